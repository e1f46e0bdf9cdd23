package commands

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/pkg/config"
)

const sampleHeader = "# See https://pre-commit.com for more information\n" +
	"# See https://pre-commit.com/hooks.html for more hooks\n"

// SampleConfigCommand handles the sample-config command functionality
type SampleConfigCommand struct {
	BaseCommand
}

// SampleConfigOptions holds command-line options for the sample-config command
type SampleConfigOptions struct {
	Write  bool   `short:"w" long:"write"  description:"Write the sample to the config file instead of stdout"`
	Force  bool   `short:"f" long:"force"  description:"Overwrite an existing configuration file"`
	Config string `short:"c" long:"config" description:"Path written by --write" default:".pre-commit-config.yaml"`
}

// Help returns the help text for the sample-config command
func (c *SampleConfigCommand) Help() string {
	return c.GenerateHelp(&SampleConfigOptions{})
}

// Synopsis returns a short description of the sample-config command
func (c *SampleConfigCommand) Synopsis() string {
	return "Produce a sample .pre-commit-config.yaml file"
}

// Run executes the sample-config command
func (c *SampleConfigCommand) Run(args []string) int {
	var opts SampleConfigOptions
	if _, err := c.ParseArgsWithHelp(&opts, args); err != nil {
		return parseExit(err)
	}

	body, err := config.Marshal(config.DefaultConfig())
	if err != nil {
		c.UI().Error(fmt.Sprintf("Error: failed to marshal configuration: %v", err))
		return ExitFailure
	}
	data := append([]byte(sampleHeader), body...)

	if !opts.Write {
		_, _ = c.Out.Write(data)
		return ExitOK
	}

	if _, err := os.Stat(opts.Config); err == nil && !opts.Force {
		c.UI().Error(fmt.Sprintf("Error: %s already exists. Use --force to overwrite.", opts.Config))
		return ExitFailure
	}
	if err := os.WriteFile(opts.Config, data, 0o644); err != nil { // #nosec G306 - config is meant to be committed
		c.UI().Error(fmt.Sprintf("Error: failed to write configuration file: %v", err))
		return ExitFailure
	}
	fmt.Fprintf(c.Out, "Sample configuration written to %s\n", opts.Config)
	return ExitOK
}

// SampleConfigCommandFactory creates a new sample-config command instance
func SampleConfigCommandFactory(s Streams) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &SampleConfigCommand{BaseCommand: BaseCommand{
			Streams:     s,
			Name:        "sample-config",
			Description: "Produce a sample .pre-commit-config.yaml file.",
			Examples: []Example{
				{Command: "hookgate sample-config > .pre-commit-config.yaml"},
				{Command: "hookgate sample-config --write --force", Description: "Overwrite the config file"},
			},
		}}, nil
	}
}
