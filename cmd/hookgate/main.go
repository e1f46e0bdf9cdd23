// Package main provides the hookgate command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/internal/commands"
)

// Version information set by GoReleaser
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], commands.StdStreams()))
}

func run(args []string, s commands.Streams) int {
	c := cli.NewCLI("hookgate", version)
	c.Args = args
	c.HelpFunc = commands.HelpFunc("hookgate")
	c.HelpWriter = s.Out
	c.ErrorWriter = s.Err
	c.Commands = commands.Factories(s)
	c.HiddenCommands = []string{"hook-impl"}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(s.Err, "Error: %v\n", err)
		return commands.ExitError
	}
	return exitStatus
}
