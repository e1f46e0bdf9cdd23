//go:build mage

package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const coverProfile = "coverage.out"

// parallelism honours TEST_PARALLEL, else the CPU count.
func parallelism() string {
	if n, err := strconv.Atoi(os.Getenv("TEST_PARALLEL")); err == nil && n > 0 {
		return strconv.Itoa(n)
	}
	return strconv.Itoa(runtime.NumCPU())
}

// Unit runs the unit tests
func (Test) Unit() error {
	fmt.Println("Running unit tests...")
	return sh.RunV("go", "test", "-p", parallelism(), "./...")
}

// Race runs the unit tests with the race detector
func (Test) Race() error {
	fmt.Println("Running unit tests with -race...")
	return sh.RunV("go", "test", "-race", "./...")
}

// Packages runs the tests under pkg/ only
func (Test) Packages() error {
	return sh.RunV("go", "test", "./pkg/...")
}

// Coverage writes coverage.out and prints the per-function summary
func (Test) Coverage() error {
	fmt.Println("Running tests with coverage...")
	if err := sh.RunV("go", "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func="+coverProfile)
}

// CoverageHTML renders coverage.html
func (Test) CoverageHTML() error {
	mg.Deps(Test.Coverage)
	return sh.Run("go", "tool", "cover", "-html="+coverProfile, "-o", "coverage.html")
}

// Benchmark runs the benchmarks
func (Test) Benchmark() error {
	return sh.RunV("go", "test", "-run", "^$", "-bench", ".", "-benchmem", "./...")
}
