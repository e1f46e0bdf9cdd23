package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mitchellh/cli"
)

// hiddenCommands are left out of the command list.
var hiddenCommands = []string{"help", "hook-impl"}

// HelpCommand handles the help command functionality
type HelpCommand struct {
	BaseCommand
	commands map[string]cli.CommandFactory
}

// HelpOptions holds command-line options for the help command
type HelpOptions struct{}

// Help returns the help text for the help command
func (c *HelpCommand) Help() string {
	return c.GenerateHelp(&HelpOptions{})
}

// Synopsis returns a short description of the help command
func (c *HelpCommand) Synopsis() string {
	return "Show help for a specific command"
}

// Run executes the help command
func (c *HelpCommand) Run(args []string) int {
	var opts HelpOptions
	remaining, err := c.ParseArgsWithHelp(&opts, args)
	if err != nil {
		return parseExit(err)
	}

	if len(remaining) == 0 {
		fmt.Fprint(c.Out, HelpFunc("hookgate")(c.commands))
		return ExitOK
	}

	factory, ok := c.commands[remaining[0]]
	if !ok {
		c.UI().Error(fmt.Sprintf("Unknown command: %s\n", remaining[0]))
		c.UI().Error("Available commands: " + strings.Join(visibleCommands(c.commands), ", "))
		return ExitFailure
	}
	cmd, err := factory()
	if err != nil {
		c.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitError
	}
	fmt.Fprint(c.Out, cmd.Help())
	return ExitOK
}

func visibleCommands(commands map[string]cli.CommandFactory) []string {
	var names []string
	for name := range commands {
		if !slices.Contains(hiddenCommands, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// HelpFunc renders the top-level usage with each command's synopsis.
func HelpFunc(app string) cli.HelpFunc {
	return func(commands map[string]cli.CommandFactory) string {
		names := visibleCommands(commands)
		width := 0
		for _, name := range names {
			width = max(width, len(name))
		}

		var b strings.Builder
		fmt.Fprintf(&b, "usage: %s [--version] [--help] <command> [<args>]\n\n", app)
		b.WriteString("Validate, verify and run pre-commit hook configurations.\n\n")
		b.WriteString("Available commands:\n")
		for _, name := range names {
			synopsis := ""
			if cmd, err := commands[name](); err == nil {
				synopsis = cmd.Synopsis()
			}
			fmt.Fprintf(&b, "  %-*s  %s\n", width, name, synopsis)
		}
		fmt.Fprintf(&b, "\nRun '%s help <command>' for details on a command.\n", app)
		return b.String()
	}
}

// HelpCommandFactory creates a new help command instance
func HelpCommandFactory(s Streams, commands map[string]cli.CommandFactory) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &HelpCommand{
			BaseCommand: BaseCommand{
				Streams:     s,
				Name:        "help",
				Usage:       "[COMMAND]",
				Description: "Show help for a command, or list the commands.",
			},
			commands: commands,
		}, nil
	}
}

// Factories returns every command keyed by name.
func Factories(s Streams) map[string]cli.CommandFactory {
	commands := map[string]cli.CommandFactory{
		"clean":             CleanCommandFactory(s),
		"hook-impl":         HookImplCommandFactory(s),
		"install":           InstallCommandFactory(s),
		"migrate-config":    MigrateConfigCommandFactory(s),
		"run":               RunCommandFactory(s),
		"sample-config":     SampleConfigCommandFactory(s),
		"uninstall":         UninstallCommandFactory(s),
		"validate-config":   ValidateConfigCommandFactory(s),
		"validate-manifest": ValidateManifestCommandFactory(s),
		"verify-revs":       VerifyRevsCommandFactory(s),
	}
	commands["help"] = HelpCommandFactory(s, commands)
	return commands
}
