//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
)

// All removes all build artifacts
func (Clean) All() error {
	fmt.Println("Cleaning all build artifacts...")
	return os.RemoveAll("bin")
}

// Coverage removes coverage files
func (Clean) Coverage() error {
	fmt.Println("Cleaning coverage files...")
	for _, f := range []string{coverProfile, "coverage.html"} {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Cache removes the manifest cache using the built binary
func (Clean) Cache() error {
	bin := filepath.Join("bin", binary)
	if _, err := os.Stat(bin); err != nil {
		fmt.Println("Binary not found, skipping cache clean")
		return nil
	}
	return sh.RunV(bin, "clean", "-v")
}
