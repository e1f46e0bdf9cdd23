package commands

import (
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/verify"
)

// VerifyRevsCommand checks that every configured hook exists at its pinned
// revision.
type VerifyRevsCommand struct {
	BaseCommand
}

// VerifyRevsOptions holds command-line options for the verify-revs command
type VerifyRevsOptions struct {
	CommonOptions
	Jobs    int  `short:"j" long:"jobs"     description:"Repositories fetched at once" default:"4"`
	NoCache bool `          long:"no-cache" description:"Always fetch manifests, bypassing the cache"`
}

// Help returns the help text for the verify-revs command
func (c *VerifyRevsCommand) Help() string {
	return c.GenerateHelp(&VerifyRevsOptions{})
}

// Synopsis returns a short description of the verify-revs command
func (c *VerifyRevsCommand) Synopsis() string {
	return "Check that configured hook ids exist at their pinned revisions"
}

// Run executes the verify-revs command
func (c *VerifyRevsCommand) Run(args []string) int {
	var opts VerifyRevsOptions
	if _, err := c.ParseArgsWithHelp(&opts, args); err != nil {
		return parseExit(err)
	}

	ctx, stop := c.Context(opts.Verbose, opts.Color)
	defer stop()

	cfg, err := config.LoadConfig(opts.Config)
	if err != nil {
		c.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitError
	}
	if err := cfg.Validate(); err != nil {
		c.UI().Error(fmt.Sprintf("Error: %s is invalid:\n%v", opts.Config, err))
		return ExitFailure
	}

	source, closeSource := manifestSource(ctx, opts.NoCache, opts.Config)
	defer closeSource()

	report, err := verify.New(source, verify.WithConcurrency(opts.Jobs)).Verify(ctx, cfg)
	if err != nil {
		c.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitError
	}

	c.printReport(newPalette(c.Out, opts.Color), report)
	if !report.OK() {
		return ExitFailure
	}
	return ExitOK
}

func (c *VerifyRevsCommand) printReport(p palette, report *verify.Report) {
	for _, repo := range report.Repos {
		name := repo.Repo
		if repo.Rev != "" {
			name += "@" + repo.Rev
		}
		switch {
		case repo.Err != nil:
			p.bad.Fprint(c.Out, "ERROR ")
			fmt.Fprintf(c.Out, "%s: %v\n", name, repo.Err)
		case len(repo.Findings) > 0:
			p.bad.Fprint(c.Out, "FAIL  ")
			fmt.Fprintln(c.Out, name)
			for _, f := range repo.Findings {
				fmt.Fprintf(c.Out, "      %s\n", f)
			}
		default:
			p.ok.Fprint(c.Out, "ok    ")
			fmt.Fprintln(c.Out, name)
		}
	}
}

// VerifyRevsCommandFactory creates a new verify-revs command instance
func VerifyRevsCommandFactory(s Streams) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &VerifyRevsCommand{BaseCommand: BaseCommand{
			Streams:     s,
			Name:        "verify-revs",
			Description: "Fetch the hook manifest of every repository at its pinned rev and check that each configured hook id exists there.",
			Examples: []Example{
				{Command: "hookgate verify-revs"},
				{Command: "hookgate verify-revs --no-cache -j 8", Description: "Refetch everything"},
			},
			Notes: []string{
				"Manifests are cached per repository and revision in $PRE_COMMIT_HOME.",
				"local hooks must set name, entry and language; meta hooks must be built in.",
			},
		}}, nil
	}
}
