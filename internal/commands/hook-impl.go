package commands

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/blairham/hookgate/internal/logger"
	"github.com/blairham/hookgate/pkg/config"
)

// AllowNoConfigEnv lets installed hooks pass when the config is missing.
const AllowNoConfigEnv = "PRE_COMMIT_ALLOW_NO_CONFIG"

const zeroSHA = "0000000000000000000000000000000000000000"

// errNothingToPush means pre-push received only branch deletions.
var errNothingToPush = errors.New("nothing to push")

// HookImplCommand handles the hook-impl command functionality
type HookImplCommand struct {
	BaseCommand
}

// HookImplOptions holds command-line options for the hook-impl command
type HookImplOptions struct {
	CommonOptions
	HookType            string `long:"hook-type"              description:"Type of hook being run" required:"true"`
	HookDir             string `long:"hook-dir"               description:"Directory where hooks are stored"`
	SkipOnMissingConfig bool   `long:"skip-on-missing-config" description:"Skip execution if config file is missing"`
}

// Help returns the help text for the hook-impl command
func (c *HookImplCommand) Help() string {
	return c.GenerateHelp(&HookImplOptions{})
}

// Synopsis returns a short description of the hook-impl command
func (c *HookImplCommand) Synopsis() string {
	return "Internal hook implementation (not for direct use)"
}

// Run executes the hook-impl command
func (c *HookImplCommand) Run(args []string) int {
	var opts HookImplOptions
	hookArgs, err := c.ParseArgsWithHelp(&opts, args)
	if err != nil {
		return parseExit(err)
	}
	ctx, stop := c.Context(opts.Verbose, opts.Color)
	defer stop()

	if err := c.ConfigFileExists(opts.Config); err != nil {
		if opts.SkipOnMissingConfig || os.Getenv(AllowNoConfigEnv) != "" {
			fmt.Fprintf(c.Out, "`%s` config file not found. Skipping `hookgate`.\n", opts.Config)
			return ExitOK
		}
		c.UI().Error(fmt.Sprintf("No %s file was found\n"+
			"- To temporarily silence this, run `%s=1 git ...`\n"+
			"- To permanently silence this, install hooks with the --allow-missing-config option\n"+
			"- To uninstall hooks run `hookgate uninstall`", opts.Config, AllowNoConfigEnv))
		return ExitFailure
	}

	// pre-push reads its refs from stdin, which the legacy hook also needs
	var stdin []byte
	if opts.HookType == config.HookTypePrePush && c.In != nil {
		if stdin, err = io.ReadAll(c.In); err != nil {
			c.UI().Error(fmt.Sprintf("Error: reading stdin: %v", err))
			return ExitError
		}
	}

	code := c.runLegacy(ctx, opts, hookArgs, stdin)

	req, err := hookImplRequest(opts.HookType, hookArgs, bytes.NewReader(stdin))
	if errors.Is(err, errNothingToPush) {
		return code
	}
	if err != nil {
		c.UI().Error(fmt.Sprintf("Error: %v", err))
		return ExitError
	}
	req.ConfigPath = opts.Config
	req.Verbose = opts.Verbose
	req.Color = opts.Color
	if req.FromRef != "" && req.Stage == config.HookTypePrePush {
		c.resolvePushBase(ctx, &req)
	}

	return max(code, c.runHooks(ctx, req))
}

// resolvePushBase checks every file when the remote tip is not in the local
// object store, as after a force push or before a fetch.
func (c *HookImplCommand) resolvePushBase(ctx context.Context, req *runRequest) {
	repo, err := c.RequireGitRepository()
	if err != nil || repo.HasCommit(req.FromRef) {
		return
	}
	logger.Debug(ctx, "remote tip not found locally, checking all files", "ref", req.FromRef)
	req.FromRef, req.ToRef = "", ""
	req.AllFiles = true
}

// runLegacy runs the hook script install moved aside, if there is one.
func (c *HookImplCommand) runLegacy(ctx context.Context, opts HookImplOptions, args []string, stdin []byte) int {
	if opts.HookDir == "" {
		return ExitOK
	}
	legacy := filepath.Join(opts.HookDir, opts.HookType+legacySuffix)
	info, err := os.Stat(legacy)
	if err != nil || info.Mode()&0o111 == 0 {
		return ExitOK
	}

	logger.Debug(ctx, "running legacy hook", "path", legacy)
	cmd := exec.CommandContext(ctx, legacy, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = c.Out
	cmd.Stderr = c.Err
	if err := cmd.Run(); err != nil {
		logger.Debug(ctx, "legacy hook failed", "err", err)
		return ExitFailure
	}
	return ExitOK
}

// hookImplRequest maps the arguments git passes to a hook of hookType onto
// a run.
func hookImplRequest(hookType string, args []string, stdin io.Reader) (runRequest, error) {
	req := runRequest{Stage: hookType}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	switch hookType {
	case config.HookTypePreCommit, config.HookTypePreMergeCommit, config.HookTypePostCommit:
		if len(args) > 0 {
			return req, fmt.Errorf("%s takes no arguments, got %d", hookType, len(args))
		}
	case config.HookTypeCommitMsg:
		if len(args) != 1 {
			return req, fmt.Errorf("commit-msg expects the message file, got %d arguments", len(args))
		}
		req.CommitMsgFilename = args[0]
	case config.HookTypePrepareCommitMsg:
		if len(args) < 1 || len(args) > 3 {
			return req, fmt.Errorf("prepare-commit-msg expects 1 to 3 arguments, got %d", len(args))
		}
		req.CommitMsgFilename = args[0]
		req.Env = hookStageEnv(map[string]string{
			"PRE_COMMIT_COMMIT_MSG_SOURCE":  arg(1),
			"PRE_COMMIT_COMMIT_OBJECT_NAME": arg(2),
		})
	case config.HookTypePostCheckout:
		if len(args) != 3 {
			return req, fmt.Errorf("post-checkout expects 3 arguments, got %d", len(args))
		}
		if args[0] != zeroSHA {
			req.FromRef, req.ToRef = args[0], args[1]
		}
		req.Env = hookStageEnv(map[string]string{"PRE_COMMIT_CHECKOUT_TYPE": args[2]})
	case config.HookTypePostMerge:
		req.Env = hookStageEnv(map[string]string{"PRE_COMMIT_IS_SQUASH_MERGE": arg(0)})
	case config.HookTypePostRewrite:
		req.Env = hookStageEnv(map[string]string{"PRE_COMMIT_REWRITE_COMMAND": arg(0)})
	case config.HookTypePreRebase:
		req.Env = hookStageEnv(map[string]string{
			"PRE_COMMIT_PRE_REBASE_UPSTREAM": arg(0),
			"PRE_COMMIT_PRE_REBASE_BRANCH":   arg(1),
		})
	case config.HookTypePrePush:
		if len(args) != 2 {
			return req, fmt.Errorf("pre-push expects remote name and url, got %d arguments", len(args))
		}
		return prePushRequest(req, args[0], args[1], stdin)
	default:
		return req, fmt.Errorf("unsupported hook type: %s", hookType)
	}
	return req, nil
}

// prePushRequest reads "<local ref> <local sha> <remote ref> <remote sha>"
// lines and runs on the first ref that is not being deleted. A new remote
// branch has no base to diff against, so every file is checked.
func prePushRequest(req runRequest, remoteName, remoteURL string, stdin io.Reader) (runRequest, error) {
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 {
			continue
		}
		localRef, localSHA, remoteRef, remoteSHA := fields[0], fields[1], fields[2], fields[3]
		if localSHA == zeroSHA {
			continue
		}
		if remoteSHA == zeroSHA {
			req.AllFiles = true
		} else {
			req.FromRef, req.ToRef = remoteSHA, localSHA
		}
		req.Env = hookStageEnv(map[string]string{
			"PRE_COMMIT_REMOTE_NAME":   remoteName,
			"PRE_COMMIT_REMOTE_URL":    remoteURL,
			"PRE_COMMIT_LOCAL_BRANCH":  localRef,
			"PRE_COMMIT_REMOTE_BRANCH": remoteRef,
		})
		return req, nil
	}
	if err := scanner.Err(); err != nil {
		return req, err
	}
	return req, errNothingToPush
}

// HookImplCommandFactory creates a new hook-impl command instance
func HookImplCommandFactory(s Streams) cli.CommandFactory {
	return func() (cli.Command, error) {
		return &HookImplCommand{BaseCommand: BaseCommand{
			Streams:     s,
			Name:        "hook-impl",
			Usage:       "[OPTIONS] -- [HOOK_ARGS...]",
			Description: "Internal command used by installed git hooks.",
			Examples: []Example{
				{Command: "hookgate hook-impl --hook-type commit-msg -- .git/COMMIT_EDITMSG"},
			},
			Notes: []string{
				"Not meant to be called directly. The scripts written by 'hookgate install'",
				"pass git's hook arguments after --.",
			},
		}}, nil
	}
}
