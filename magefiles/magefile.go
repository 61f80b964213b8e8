// Package main provides build targets for beantag using Mage.
//
// Usage:
//
//	mage build      Compile the beantag binary to bin/
//	mage test       Run all Go tests
//	mage scenarios  Run the YAML tagging scenarios on both SQLite drivers
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName   = "beantag"
	binaryDir    = "bin"
	cmdDir       = "./cmd/beantag"
	scenariosDir = "internal/harness/testdata/scenarios"
)

// Build compiles the beantag binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Scenarios builds the binary and runs the scenario suite on each driver.
func Scenarios() error {
	mg.Deps(Build)
	bin := filepath.Join(binaryDir, binaryName)
	for _, driver := range []string{"sqlite3", "sqlite"} {
		if err := sh.RunV(bin, "test", scenariosDir, "--driver", driver); err != nil {
			return err
		}
	}
	return nil
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}
