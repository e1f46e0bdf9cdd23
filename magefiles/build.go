//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

// ldflags stamps the version reported by hookgate --version.
func ldflags() string {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(version) == "" {
		version = "dev"
	}
	return "-X main.version=" + strings.TrimSpace(version)
}

// Binary builds bin/hookgate
func (Build) Binary() error {
	fmt.Println("Building hookgate...")
	return sh.Run("go", "build", "-ldflags", ldflags(), "-o", filepath.Join("bin", binary), mainPkg)
}

// Install installs the binary to $GOPATH/bin
func (Build) Install() error {
	fmt.Println("Installing hookgate...")
	return sh.Run("go", "install", "-ldflags", ldflags(), mainPkg)
}

// Debug builds without optimizations for delve
func (Build) Debug() error {
	fmt.Println("Building hookgate with debug flags...")
	return sh.Run("go", "build", "-gcflags", "all=-N -l", "-o", filepath.Join("bin", binary+"-debug"), mainPkg)
}
