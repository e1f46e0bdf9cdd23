// Package commands implements the hookgate subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/internal/logger"
	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/git"
	"github.com/blairham/hookgate/pkg/hook/formatting"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitError   = 3
)

// OptionsUsage is the usage line of commands without positional arguments.
const OptionsUsage = "[OPTIONS]"

// errHelpShown is returned by ParseArgsWithHelp after printing help.
var errHelpShown = errors.New("help shown")

// Streams are the standard streams a command talks to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// BaseCommand provides common functionality for all commands
type BaseCommand struct {
	Streams
	Name        string
	Usage       string
	Description string
	Examples    []Example
	Notes       []string
}

// CommonOptions defines options shared across multiple commands
type CommonOptions struct {
	Color   string `long:"color"   description:"Whether to use color in output" choice:"auto" choice:"always" choice:"never" default:"auto" env:"PRE_COMMIT_COLOR"`
	Config  string `long:"config"  description:"Path to config file" default:".pre-commit-config.yaml" short:"c"`
	Verbose bool   `long:"verbose" description:"Enable verbose output" short:"v"`
}

// UI returns a cli.Ui over the command streams.
func (bc *BaseCommand) UI() cli.Ui {
	return &cli.BasicUi{Reader: bc.In, Writer: bc.Out, ErrorWriter: bc.Err}
}

func (bc *BaseCommand) newParser(opts any) *flags.Parser {
	parser := flags.NewNamedParser("hookgate "+bc.Name, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.AddGroup("Options", "", opts); err != nil {
		panic(fmt.Sprintf("invalid options for %s: %v", bc.Name, err))
	}
	parser.Usage = bc.Usage
	if parser.Usage == "" {
		parser.Usage = OptionsUsage
	}
	return parser
}

// ParseArgsWithHelp parses arguments. It prints the help text and returns
// errHelpShown for -h, and reports any other parse error itself.
func (bc *BaseCommand) ParseArgsWithHelp(opts any, args []string) ([]string, error) {
	remaining, err := bc.newParser(opts).ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			bc.UI().Output(bc.GenerateHelp(opts))
			return nil, errHelpShown
		}
		bc.UI().Error(fmt.Sprintf("Error parsing arguments: %v", err))
		return nil, fmt.Errorf("error parsing arguments: %w", err)
	}
	return remaining, nil
}

// parseExit maps a ParseArgsWithHelp error to an exit code.
func parseExit(err error) int {
	if errors.Is(err, errHelpShown) {
		return ExitOK
	}
	return ExitError
}

// GenerateHelp creates standardized help output
func (bc *BaseCommand) GenerateHelp(opts any) string {
	formatter := &HelpFormatter{
		Command:     bc.Name,
		Description: bc.Description,
		Examples:    bc.Examples,
		Notes:       bc.Notes,
	}
	return formatter.FormatHelp(bc.newParser(opts))
}

// Context returns a context carrying the command logger, cancelled on
// interrupt.
func (bc *BaseCommand) Context(verbose bool, colorMode string) (context.Context, context.CancelFunc) {
	l := logger.New(bc.Err, verbose, !formatting.UseColor(bc.Err, colorMode))
	return signal.NotifyContext(logger.Put(context.Background(), l), os.Interrupt)
}

// RequireGitRepository ensures we're in a git repository and returns it
func (bc *BaseCommand) RequireGitRepository() (*git.Repository, error) {
	repo, err := git.NewRepository("")
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", err)
	}
	return repo, nil
}

// ConfigFileExists checks if the config file exists
func (bc *BaseCommand) ConfigFileExists(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", configPath)
	}
	return nil
}

// HookTypeOptions provides common hook type functionality
type HookTypeOptions struct {
	HookTypes []string `short:"t" long:"hook-type" description:"Hook type to install (can be specified multiple times)"`
}

// GetHookTypes returns the requested hook types, else defaults.
func (hto *HookTypeOptions) GetHookTypes(defaults []string) []string {
	if len(hto.HookTypes) == 0 {
		return defaults
	}
	return hto.HookTypes
}

// ValidateHookTypes validates that all specified hook types are supported
func (hto *HookTypeOptions) ValidateHookTypes() error {
	for _, hookType := range hto.HookTypes {
		if !slices.Contains(config.HookTypes, hookType) {
			return fmt.Errorf("unsupported hook type: %s", hookType)
		}
	}
	return nil
}
