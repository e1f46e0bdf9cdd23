package commands

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/pkg/cache"
)

// CleanCommand handles the clean command functionality
type CleanCommand struct {
	BaseCommand
}

// CleanOptions holds command-line options for the clean command
type CleanOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Verbose output showing what is being cleaned"`
}

// Help returns the help text for the clean command
func (c *CleanCommand) Help() string {
	return c.GenerateHelp(&CleanOptions{})
}

// Synopsis returns a short description of the clean command
func (c *CleanCommand) Synopsis() string {
	return "Clean out cached hook manifests"
}

// Run executes the clean command
func (c *CleanCommand) Run(args []string) int {
	var opts CleanOptions
	if _, err := c.ParseArgsWithHelp(&opts, args); err != nil {
		return parseExit(err)
	}

	dir, err := cache.DefaultDir()
	if err != nil {
		c.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitFailure
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if opts.Verbose {
			fmt.Fprintf(c.Out, "Nothing to clean in %s.\n", dir)
		}
		return ExitOK
	}
	if err := cache.Clean(dir); err != nil {
		c.UI().Error(fmt.Sprintf("Error: failed to clean cache directory: %v", err))
		return ExitFailure
	}
	fmt.Fprintf(c.Out, "Cleaned %s.\n", dir)
	return ExitOK
}

// CleanCommandFactory creates a new clean command instance
func CleanCommandFactory(s Streams) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &CleanCommand{BaseCommand: BaseCommand{
			Streams:     s,
			Name:        "clean",
			Description: "Remove the manifest cache.",
			Examples: []Example{
				{Command: "hookgate clean"},
				{Command: "PRE_COMMIT_HOME=/tmp/hg hookgate clean"},
			},
			Notes: []string{
				"The cache lives in $PRE_COMMIT_HOME, else $XDG_CACHE_HOME/hookgate, else ~/.cache/hookgate.",
			},
		}}, nil
	}
}
