// wvrun runs commands (or reads recorded output) speaking the WvTest
// line protocol and reports per-test results.
//
// Usage:
//
//	wvrun run -- ./t/unit.test
//	wvrun run -s -e "./t/a.test" -e "./t/b.test" --junit results.xml
//	wvrun parse build.log
//
// The process exits 0 when every test section passed, 1 when at least
// one failed, and 2 on usage or setup errors.
package main

import (
	"os"

	"github.com/wvtest/wvrun/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
