package commands

import (
	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/pkg/config"
)

// ValidateConfigCommand handles the validate-config command functionality
type ValidateConfigCommand struct {
	BaseCommand
}

// ValidateConfigOptions holds command-line options for the validate-config command
type ValidateConfigOptions struct {
	Color string `long:"color" description:"Whether to use color in output" choice:"auto" choice:"always" choice:"never" default:"auto" env:"PRE_COMMIT_COLOR"`
}

// Help returns the help text for the validate-config command
func (c *ValidateConfigCommand) Help() string {
	return c.GenerateHelp(&ValidateConfigOptions{})
}

// Synopsis returns a short description of the validate-config command
func (c *ValidateConfigCommand) Synopsis() string {
	return "Validate .pre-commit-config.yaml files"
}

// Run executes the validate-config command
func (c *ValidateConfigCommand) Run(args []string) int {
	var opts ValidateConfigOptions
	files, err := c.ParseArgsWithHelp(&opts, args)
	if err != nil {
		return parseExit(err)
	}
	if len(files) == 0 {
		files = []string{config.ConfigFileName}
	}
	return c.validateFiles(newPalette(c.Out, opts.Color), files, checkConfig)
}

// ValidateConfigCommandFactory creates a new validate-config command instance
func ValidateConfigCommandFactory(s Streams) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &ValidateConfigCommand{BaseCommand: BaseCommand{
			Streams:     s,
			Name:        "validate-config",
			Usage:       "[OPTIONS] [FILES...]",
			Description: "Validate .pre-commit-config.yaml files against the configuration schema.",
			Examples: []Example{
				{Command: "hookgate validate-config", Description: "Validate ./.pre-commit-config.yaml"},
				{Command: "hookgate validate-config a.yaml b.yaml"},
			},
			Notes: []string{
				"Checks structure first, then ids, regexes, stages and repo fields.",
				"Unexpected keys are reported as warnings.",
				"Exits 1 if any file is invalid.",
			},
		}}, nil
	}
}
