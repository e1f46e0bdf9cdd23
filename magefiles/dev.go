//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Run builds the binary and prints its help
func (Dev) Run() error {
	mg.Deps(Build.Binary)
	return sh.RunV(filepath.Join("bin", binary), "--help")
}

// Fixtures validates the configuration and manifest fixtures with the
// built binary
func (Dev) Fixtures() error {
	mg.Deps(Build.Binary)
	bin := filepath.Join("bin", binary)
	if err := sh.RunV(bin, "validate-config", filepath.Join("pkg", "config", "testdata", "esptool.yaml")); err != nil {
		return err
	}
	return sh.RunV(bin, "validate-manifest", filepath.Join("pkg", "manifest", "testdata", "ruff.yaml"))
}

// Verify checks the pinned revisions of the esptool fixture against the
// real repositories
func (Dev) Verify() error {
	mg.Deps(Build.Binary)
	return sh.RunV(filepath.Join("bin", binary), "verify-revs", "-c", filepath.Join("pkg", "config", "testdata", "esptool.yaml"))
}
