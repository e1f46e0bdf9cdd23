package commands

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/git"
)

// UninstallCommand handles the uninstall command functionality
type UninstallCommand struct {
	BaseCommand
}

// UninstallOptions holds command-line options for the uninstall command
type UninstallOptions struct {
	CommonOptions
	HookTypeOptions
}

// Help returns the help text for the uninstall command
func (c *UninstallCommand) Help() string {
	return c.GenerateHelp(&UninstallOptions{})
}

// Synopsis returns a short description of the uninstall command
func (c *UninstallCommand) Synopsis() string {
	return "Uninstall the git hook scripts"
}

// Run executes the uninstall command
func (c *UninstallCommand) Run(args []string) int {
	var opts UninstallOptions
	if _, err := c.ParseArgsWithHelp(&opts, args); err != nil {
		return parseExit(err)
	}
	if err := opts.ValidateHookTypes(); err != nil {
		c.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitError
	}

	repo, err := c.RequireGitRepository()
	if err != nil {
		c.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitError
	}

	defaults := []string{config.HookTypePreCommit}
	if cfg, err := config.LoadConfig(opts.Config); err == nil {
		defaults = cfg.InstallHookTypes()
	}

	for _, hookType := range opts.GetHookTypes(defaults) {
		if err := c.uninstallOne(repo, hookType); err != nil {
			c.UI().Error(fmt.Sprintf("Error: %v", err))
			return ExitFailure
		}
	}
	return ExitOK
}

// uninstallOne removes a script install wrote and restores the hook it
// moved aside. Foreign scripts are left alone.
func (c *UninstallCommand) uninstallOne(repo *git.Repository, hookType string) error {
	script, err := repo.ReadHook(hookType)
	if err != nil || !isManagedHook(script) {
		return nil
	}

	hookPath := repo.HookPath(hookType)
	if err := repo.UninstallHook(hookType); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "%s uninstalled\n", hookPath)

	legacyPath := hookPath + legacySuffix
	if _, err := os.Stat(legacyPath); err == nil {
		if err := os.Rename(legacyPath, hookPath); err != nil {
			return fmt.Errorf("failed to restore %s: %w", legacyPath, err)
		}
		fmt.Fprintf(c.Out, "Restored previous hooks to %s\n", hookPath)
	}
	return nil
}

// UninstallCommandFactory creates a new uninstall command instance
func UninstallCommandFactory(s Streams) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &UninstallCommand{BaseCommand: BaseCommand{
			Streams:     s,
			Name:        "uninstall",
			Description: "Remove the hook scripts written by install.",
			Examples: []Example{
				{Command: "hookgate uninstall"},
				{Command: "hookgate uninstall -t commit-msg"},
			},
			Notes: []string{
				"Hooks moved aside by install are restored.",
			},
		}}, nil
	}
}
