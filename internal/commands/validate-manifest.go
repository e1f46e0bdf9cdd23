package commands

import (
	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/pkg/manifest"
)

// ValidateManifestCommand handles the validate-manifest command functionality
type ValidateManifestCommand struct {
	BaseCommand
}

// ValidateManifestOptions holds command-line options for the validate-manifest command
type ValidateManifestOptions struct {
	Color string `long:"color" description:"Whether to use color in output" choice:"auto" choice:"always" choice:"never" default:"auto" env:"PRE_COMMIT_COLOR"`
}

// Help returns the help text for the validate-manifest command
func (c *ValidateManifestCommand) Help() string {
	return c.GenerateHelp(&ValidateManifestOptions{})
}

// Synopsis returns a short description of the validate-manifest command
func (c *ValidateManifestCommand) Synopsis() string {
	return "Validate .pre-commit-hooks.yaml files"
}

// Run executes the validate-manifest command
func (c *ValidateManifestCommand) Run(args []string) int {
	var opts ValidateManifestOptions
	files, err := c.ParseArgsWithHelp(&opts, args)
	if err != nil {
		return parseExit(err)
	}
	if len(files) == 0 {
		files = []string{manifest.FileName}
	}
	return c.validateFiles(newPalette(c.Out, opts.Color), files, checkManifest)
}

// ValidateManifestCommandFactory creates a new validate-manifest command instance
func ValidateManifestCommandFactory(s Streams) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &ValidateManifestCommand{BaseCommand: BaseCommand{
			Streams:     s,
			Name:        "validate-manifest",
			Usage:       "[OPTIONS] [FILES...]",
			Description: "Validate .pre-commit-hooks.yaml files a hook repository publishes.",
			Examples: []Example{
				{Command: "hookgate validate-manifest", Description: "Validate ./.pre-commit-hooks.yaml"},
			},
			Notes: []string{
				"Every hook needs id, name, entry and a known language.",
			},
		}}, nil
	}
}
