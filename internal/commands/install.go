package commands

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/git"
)

// hookMarker identifies scripts written by install.
const hookMarker = "# File generated by hookgate install"

// legacySuffix is appended to a foreign hook script install moves aside.
const legacySuffix = ".legacy"

// InstallCommand handles the install command functionality
type InstallCommand struct {
	BaseCommand
}

// InstallOptions holds command-line options for the install command
type InstallOptions struct {
	CommonOptions
	HookTypeOptions
	Overwrite          bool `short:"f" long:"overwrite"            description:"Replace existing hooks instead of chaining them"`
	AllowMissingConfig bool `          long:"allow-missing-config" description:"Installed hooks pass when the config file is missing"`
}

// Help returns the help text for the install command
func (c *InstallCommand) Help() string {
	return c.GenerateHelp(&InstallOptions{})
}

// Synopsis returns a short description of the install command
func (c *InstallCommand) Synopsis() string {
	return "Install the git hook scripts"
}

// Run executes the install command
func (c *InstallCommand) Run(args []string) int {
	var opts InstallOptions
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

	executable, err := os.Executable()
	if err != nil {
		executable = "hookgate"
	}

	for _, hookType := range opts.GetHookTypes(defaults) {
		if err := c.installOne(repo, hookType, executable, opts); err != nil {
			c.UI().Error(fmt.Sprintf("Error: %v", err))
			return ExitFailure
		}
	}
	return ExitOK
}

func (c *InstallCommand) installOne(repo *git.Repository, hookType, executable string, opts InstallOptions) error {
	hookPath := repo.HookPath(hookType)
	legacyPath := hookPath + legacySuffix

	if existing, err := repo.ReadHook(hookType); err == nil && !isManagedHook(existing) {
		if opts.Overwrite {
			if err := os.Remove(hookPath); err != nil {
				return fmt.Errorf("failed to remove %s: %w", hookPath, err)
			}
		} else {
			if err := os.Rename(hookPath, legacyPath); err != nil {
				return fmt.Errorf("failed to move %s aside: %w", hookPath, err)
			}
		}
	}

	// a previous install's legacy hook stays chained unless overwriting
	if opts.Overwrite {
		if err := os.Remove(legacyPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", legacyPath, err)
		}
	} else if _, err := os.Stat(legacyPath); err == nil {
		fmt.Fprintf(c.Out, "Running in migration mode with existing hooks at %s\n", legacyPath)
		fmt.Fprintln(c.Out, "Use -f to use only hookgate.")
	}

	script := hookScript(hookType, executable, opts.Config, opts.AllowMissingConfig)
	if err := repo.InstallHook(hookType, script); err != nil {
		return fmt.Errorf("failed to install %s hook: %w", hookType, err)
	}
	fmt.Fprintf(c.Out, "hookgate installed at %s\n", hookPath)
	return nil
}

func isManagedHook(script []byte) bool {
	return bytes.Contains(script, []byte(hookMarker))
}

// hookScript renders the script git runs for hookType. It prefers the
// binary that installed it and falls back to hookgate on PATH.
func hookScript(hookType, executable, configPath string, allowMissingConfig bool) string {
	implArgs := []string{
		"hook-impl",
		"--config=" + configPath,
		"--hook-type=" + hookType,
	}
	if allowMissingConfig {
		implArgs = append(implArgs, "--skip-on-missing-config")
	}
	quoted := shellescape.QuoteCommand(implArgs)
	hookDir := `--hook-dir="$(cd "$(dirname "$0")" && pwd)"`

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString(hookMarker + "\n\n")
	fmt.Fprintf(&b, "INSTALL_HOOKGATE=%s\n\n", shellescape.Quote(executable))
	b.WriteString("if [ -x \"$INSTALL_HOOKGATE\" ]; then\n")
	fmt.Fprintf(&b, "    exec \"$INSTALL_HOOKGATE\" %s %s -- \"$@\"\n", quoted, hookDir)
	b.WriteString("elif command -v hookgate > /dev/null; then\n")
	fmt.Fprintf(&b, "    exec hookgate %s %s -- \"$@\"\n", quoted, hookDir)
	b.WriteString("else\n")
	b.WriteString("    echo '`hookgate` not found.  Did you forget to install it?' 1>&2\n")
	b.WriteString("    exit 1\n")
	b.WriteString("fi\n")
	return b.String()
}

// InstallCommandFactory creates a new install command instance
func InstallCommandFactory(s Streams) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &InstallCommand{BaseCommand: BaseCommand{
			Streams:     s,
			Name:        "install",
			Description: "Install hook scripts into the git repository.",
			Examples: []Example{
				{Command: "hookgate install", Description: "Install default_install_hook_types, else pre-commit"},
				{Command: "hookgate install -t pre-commit -t commit-msg", Description: "Install multiple hooks"},
				{Command: "hookgate install --overwrite", Description: "Drop existing foreign hooks"},
			},
			Notes: []string{
				"Available hook types: " + strings.Join(config.HookTypes, ", "),
				"An existing foreign hook is kept as <hook>.legacy and run first.",
			},
		}}, nil
	}
}
