// Package version carries build identification injected by the linker.
package version

import "fmt"

// Set via -ldflags "-X github.com/wvtest/wvrun/internal/version.Version=..."
// and friends; the defaults identify an untagged development build.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String renders the build identification on one line.
func String() string {
	return fmt.Sprintf("wvrun %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
