//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
)

// Default target - build the binary.
var Default = Build

// Build builds the wvrun binary with version identification baked in.
func Build() error {
	ldflags := fmt.Sprintf(
		"-X %[1]s.Version=%[2]s -X %[1]s.CommitHash=%[3]s -X %[1]s.BuildDate=%[4]s",
		"github.com/wvtest/wvrun/internal/version",
		gitOutput("describe", "--tags", "--always", "--dirty"),
		gitOutput("rev-parse", "--short", "HEAD"),
		time.Now().UTC().Format(time.RFC3339),
	)
	return run("go", "build", "-ldflags", ldflags, "-o", "./bin/wvrun", "./cmd/wvrun")
}

// gitOutput returns the trimmed output of a git command, or "unknown"
// when git is unavailable (for example in a source tarball).
func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

// Test runs the full test suite with the race detector.
func Test() error {
	return run("go", "test", "-race", "./...")
}

// Lint runs go vet and, when available, staticcheck.
func Lint() error {
	if err := run("go", "vet", "./..."); err != nil {
		return err
	}
	if _, err := exec.LookPath("staticcheck"); err != nil {
		fmt.Println("staticcheck not found, skipping (go install honnef.co/go/tools/cmd/staticcheck@latest)")
		return nil
	}
	return run("staticcheck", "./...")
}

// QA runs lint and tests.
func QA() error {
	mg.Deps(Lint)
	return Test()
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll("./bin")
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
