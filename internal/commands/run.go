package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/internal/logger"
	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/git"
	"github.com/blairham/hookgate/pkg/hook"
	"github.com/blairham/hookgate/pkg/hook/execution"
	"github.com/blairham/hookgate/pkg/hook/formatting"
)

// RunCommand handles the run command functionality
type RunCommand struct {
	BaseCommand
}

// RunOptions holds command-line options for the run command
type RunOptions struct {
	CommonOptions
	HookStage                  string        `long:"hook-stage"                    description:"Hook stage to run"                                default:"pre-commit"`
	FromRef                    string        `long:"from-ref"                      description:"From ref for diff (alias: --source)"              short:"s"`
	ToRef                      string        `long:"to-ref"                        description:"To ref for diff (alias: --origin)"                short:"o"`
	RemoteName                 string        `long:"remote-name"                   description:"Remote name used by git push"`
	RemoteURL                  string        `long:"remote-url"                    description:"Remote url used by git push"`
	LocalBranch                string        `long:"local-branch"                  description:"Local branch name"`
	RemoteBranch               string        `long:"remote-branch"                 description:"Remote branch name"`
	CommitMsgFilename          string        `long:"commit-msg-filename"           description:"Filename to check when running during commit-msg"`
	PrepareCommitMessageSource string        `long:"prepare-commit-message-source" description:"Source of the commit message"`
	CommitObjectName           string        `long:"commit-object-name"            description:"Commit object name"`
	CheckoutType               string        `long:"checkout-type"                 description:"Checkout type (0=file, 1=branch)"`
	IsSquashMerge              string        `long:"is-squash-merge"               description:"Whether merge was a squash merge"`
	RewriteCommand             string        `long:"rewrite-command"               description:"Command that invoked the rewrite"`
	PreRebaseUpstream          string        `long:"pre-rebase-upstream"           description:"Upstream from which series was forked"`
	PreRebaseBranch            string        `long:"pre-rebase-branch"             description:"Branch being rebased"`
	Files                      []string      `long:"files"                         description:"Specific filenames to run hooks on"`
	Timeout                    time.Duration `long:"timeout"                       description:"Per-hook timeout (e.g. 30s, 5m); 0 disables"      default:"0"`
	Jobs                       int           `long:"jobs"                          description:"Processes per hook (default: number of CPUs)"     short:"j"`
	AllFiles                   bool          `long:"all-files"                     description:"Run on all files in the repository"               short:"a"`
	NoCache                    bool          `long:"no-cache"                      description:"Fetch hook manifests instead of using the cache"`
}

// Help returns the help text for the run command
func (c *RunCommand) Help() string {
	return c.GenerateHelp(&RunOptions{})
}

// Synopsis returns a short description of the run command
func (c *RunCommand) Synopsis() string {
	return "Run hooks"
}

// Run executes the run command
func (c *RunCommand) Run(args []string) int {
	var opts RunOptions
	remaining, err := c.ParseArgsWithHelp(&opts, args)
	if err != nil {
		return parseExit(err)
	}
	if !slices.Contains(config.Stages, config.NormalizeStage(opts.HookStage)) {
		c.UI().Error(fmt.Sprintf("Error: unknown hook stage %q", opts.HookStage))
		return ExitError
	}
	if opts.AllFiles && len(opts.Files) > 0 {
		c.UI().Error("Error: --all-files and --files are mutually exclusive")
		return ExitError
	}
	if (opts.FromRef == "") != (opts.ToRef == "") {
		c.UI().Error("Error: --from-ref and --to-ref must be given together")
		return ExitError
	}

	req := runRequest{
		ConfigPath:        opts.Config,
		Stage:             config.NormalizeStage(opts.HookStage),
		Files:             opts.Files,
		AllFiles:          opts.AllFiles,
		FromRef:           opts.FromRef,
		ToRef:             opts.ToRef,
		CommitMsgFilename: opts.CommitMsgFilename,
		Verbose:           opts.Verbose,
		Color:             opts.Color,
		Timeout:           opts.Timeout,
		Jobs:              opts.Jobs,
		NoCache:           opts.NoCache,
		Env: hookStageEnv(map[string]string{
			"PRE_COMMIT_REMOTE_NAME":         opts.RemoteName,
			"PRE_COMMIT_REMOTE_URL":          opts.RemoteURL,
			"PRE_COMMIT_LOCAL_BRANCH":        opts.LocalBranch,
			"PRE_COMMIT_REMOTE_BRANCH":       opts.RemoteBranch,
			"PRE_COMMIT_COMMIT_MSG_SOURCE":   opts.PrepareCommitMessageSource,
			"PRE_COMMIT_COMMIT_OBJECT_NAME":  opts.CommitObjectName,
			"PRE_COMMIT_CHECKOUT_TYPE":       opts.CheckoutType,
			"PRE_COMMIT_IS_SQUASH_MERGE":     opts.IsSquashMerge,
			"PRE_COMMIT_REWRITE_COMMAND":     opts.RewriteCommand,
			"PRE_COMMIT_PRE_REBASE_UPSTREAM": opts.PreRebaseUpstream,
			"PRE_COMMIT_PRE_REBASE_BRANCH":   opts.PreRebaseBranch,
		}),
	}
	switch {
	case len(remaining) == 1:
		req.HookID = remaining[0]
	case len(remaining) > 1:
		c.UI().Error(fmt.Sprintf("Error: expected at most one hook id, got %d", len(remaining)))
		return ExitError
	}

	ctx, stop := c.Context(opts.Verbose, opts.Color)
	defer stop()
	return c.runHooks(ctx, req)
}

// runRequest describes one run of the configured hooks, from the command
// line or from an installed git hook.
type runRequest struct {
	ConfigPath        string
	Stage             string
	HookID            string
	Files             []string
	AllFiles          bool
	FromRef           string
	ToRef             string
	CommitMsgFilename string
	Env               []string
	Verbose           bool
	Color             string
	Timeout           time.Duration
	Jobs              int
	NoCache           bool
}

// hookStageEnv turns the non-empty values into KEY=value pairs in a stable
// order.
func hookStageEnv(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k, v := range values {
		if v != "" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	env := make([]string, len(keys))
	for i, k := range keys {
		env[i] = k + "=" + values[k]
	}
	return env
}

func (bc *BaseCommand) runHooks(ctx context.Context, req runRequest) int {
	repo, err := bc.RequireGitRepository()
	if err != nil {
		bc.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitError
	}

	cfg, err := config.LoadConfig(req.ConfigPath)
	if err != nil {
		bc.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitFailure
	}
	for _, w := range cfg.Warnings {
		logger.Warn(ctx, w, "config", req.ConfigPath)
	}
	if err := cfg.Validate(); err != nil {
		bc.UI().Error(fmt.Sprintf("Error: %s is invalid:\n%v", req.ConfigPath, err))
		return ExitFailure
	}

	if bc.configUnstaged(ctx, repo, req) {
		bc.UI().Error(fmt.Sprintf(
			"Your hook configuration is unstaged.\n`git add %s` to fix this.", req.ConfigPath))
		return ExitFailure
	}

	files, err := bc.filesForRun(repo, req)
	if err != nil {
		bc.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitFailure
	}
	logger.Debug(ctx, "files for run", "stage", req.Stage, "count", len(files))

	env := req.Env
	if req.FromRef != "" {
		env = append(env, "PRE_COMMIT_FROM_REF="+req.FromRef, "PRE_COMMIT_TO_REF="+req.ToRef)
	}

	ectx := &execution.Context{
		Config:      cfg,
		RepoRoot:    repo.Root,
		HookStage:   req.Stage,
		Skip:        execution.ParseSkip(os.Getenv(execution.SkipEnv)),
		Files:       files,
		Env:         env,
		Timeout:     req.Timeout,
		Concurrency: req.Jobs,
		AllFiles:    req.AllFiles,
		Verbose:     req.Verbose,
		ListFiles:   repo.AllFiles,
		Fingerprint: repo.WorktreeFingerprint,
	}
	if req.HookID != "" {
		ectx.HookIDs = []string{req.HookID}
	}

	source, closeSource := manifestSource(ctx, req.NoCache, req.ConfigPath)
	defer closeSource()

	formatter := formatting.NewFormatter(bc.Out, req.Color, req.Verbose)
	orchestrator := hook.NewOrchestrator(ectx, source,
		hook.WithPlan(func(items []execution.RunItem) {
			names := make([]string, len(items))
			for i, item := range items {
				names[i] = item.Hook.DisplayName()
			}
			formatter.FitNames(names)
		}),
		hook.WithReporter(formatter.Print),
	)

	_, err = orchestrator.RunHooks(ctx)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, hook.ErrHookFailed):
		return ExitFailure
	default:
		bc.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitFailure
	}
}

// configUnstaged reports whether a run over staged files would see a
// configuration that differs from the one being committed.
func (bc *BaseCommand) configUnstaged(ctx context.Context, repo *git.Repository, req runRequest) bool {
	if req.AllFiles || len(req.Files) > 0 || req.FromRef != "" || req.Stage != config.HookTypePreCommit {
		return false
	}
	rel, err := repoRelative(repo.Root, req.ConfigPath)
	if err != nil {
		return false
	}
	dirty, err := repo.HasUnstagedChanges(rel)
	if err != nil {
		logger.Debug(ctx, "cannot check config status", "err", err)
		return false
	}
	return dirty
}

// filesForRun picks the files a run considers, relative to the repo root.
func (bc *BaseCommand) filesForRun(repo *git.Repository, req runRequest) ([]string, error) {
	switch {
	case len(req.Files) > 0:
		files := make([]string, 0, len(req.Files))
		for _, f := range req.Files {
			rel, err := repoRelative(repo.Root, f)
			if err != nil {
				return nil, err
			}
			files = append(files, rel)
		}
		return files, nil
	case req.AllFiles:
		return repo.AllFiles()
	case req.FromRef != "" && req.ToRef != "":
		return repo.ChangedFiles(req.FromRef, req.ToRef)
	case req.CommitMsgFilename != "" &&
		(req.Stage == config.HookTypeCommitMsg || req.Stage == config.HookTypePrepareCommitMsg):
		return []string{req.CommitMsgFilename}, nil
	default:
		return repo.StagedFiles()
	}
}

// repoRelative converts a path given relative to the working directory into
// a slash-separated path relative to root.
func repoRelative(root, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	// the root may be reported through a symlink, e.g. /tmp on macOS
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(resolved, filepath.Base(abs))
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// RunCommandFactory creates a new run command instance
func RunCommandFactory(s Streams) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &RunCommand{BaseCommand: BaseCommand{
			Streams:     s,
			Name:        "run",
			Usage:       "[OPTIONS] [HOOK_ID]",
			Description: "Run the configured hooks on staged files, or on the files selected by the options.",
			Examples: []Example{
				{Command: "hookgate run", Description: "Run on staged files"},
				{Command: "hookgate run --all-files", Description: "Run on every tracked file"},
				{Command: "hookgate run mypy --files esptool/cmds.py", Description: "One hook, one file"},
				{Command: "SKIP=mypy,codespell hookgate run", Description: "Skip hooks by id"},
				{Command: "hookgate run --from-ref origin/master --to-ref HEAD"},
			},
			Notes: []string{
				"Hooks run in configuration order; files are filtered per hook.",
				"A hook that changes files fails even when it exits 0.",
				"Exit status is 1 if any hook failed.",
			},
		}}, nil
	}
}
