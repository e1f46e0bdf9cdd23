//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Lint runs golangci-lint
func (Quality) Lint() error {
	fmt.Println("Running linter...")
	return sh.RunV("golangci-lint", "run", "./...")
}

// Format formats the code with gofumpt
func (Quality) Format() error {
	fmt.Println("Formatting code with gofumpt...")
	if err := sh.Run("gofumpt", "-l", "-w", "."); err != nil {
		return fmt.Errorf("gofumpt failed: %w", err)
	}
	return nil
}

// Vet runs go vet
func (Quality) Vet() error {
	fmt.Println("Running go vet...")
	return sh.Run("go", "vet", "./...")
}

// Tidy runs go mod tidy
func (Quality) Tidy() error {
	return sh.Run("go", "mod", "tidy")
}

// All runs all quality checks
func (Quality) All() {
	mg.SerialDeps(Quality.Format, Quality.Vet, Quality.Lint, Test.Unit)
}
