package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/pkg/config"
)

// MigrateConfigCommand handles the migrate-config command functionality
type MigrateConfigCommand struct {
	BaseCommand
}

// MigrateConfigOptions holds command-line options for the migrate-config command
type MigrateConfigOptions struct {
	Config string `long:"config" description:"Path to config file" default:".pre-commit-config.yaml" short:"c"`
}

// Help returns the help text for the migrate-config command
func (c *MigrateConfigCommand) Help() string {
	return c.GenerateHelp(&MigrateConfigOptions{})
}

// Synopsis returns a short description of the migrate-config command
func (c *MigrateConfigCommand) Synopsis() string {
	return "Migrate list configuration to new map configuration"
}

// Run executes the migrate-config command
func (c *MigrateConfigCommand) Run(args []string) int {
	var opts MigrateConfigOptions
	if _, err := c.ParseArgsWithHelp(&opts, args); err != nil {
		return parseExit(err)
	}

	path := filepath.Clean(opts.Config)
	info, err := os.Stat(path)
	if err != nil {
		c.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitFailure
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitFailure
	}

	migrated, changed, err := config.Migrate(data)
	if err != nil {
		c.UI().Error(fmt.Sprintf("Error: cannot migrate %s: %v", opts.Config, err))
		return ExitFailure
	}
	if !changed {
		fmt.Fprintln(c.Out, "Configuration is already migrated.")
		return ExitOK
	}

	if err := os.WriteFile(path, migrated, info.Mode().Perm()); err != nil {
		c.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitFailure
	}
	fmt.Fprintln(c.Out, "Configuration has been migrated.")
	return ExitOK
}

// MigrateConfigCommandFactory creates a new migrate-config command instance
func MigrateConfigCommandFactory(s Streams) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &MigrateConfigCommand{BaseCommand: BaseCommand{
			Streams:     s,
			Name:        "migrate-config",
			Description: "Rewrite a configuration written for older releases in place.",
			Examples: []Example{
				{Command: "hookgate migrate-config"},
			},
			Notes: []string{
				"A top-level list becomes repos:, sha: becomes rev: and legacy stage",
				"names (commit, push, merge-commit) are renamed. Comments are kept.",
			},
		}}, nil
	}
}
