package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blairham/hookgate/internal/logger"
	"github.com/blairham/hookgate/pkg/hook/commands"
	"github.com/blairham/hookgate/pkg/hook/matching"
)

// Executor handles the execution of individual hooks
type Executor struct {
	ctx     *Context
	builder *commands.Builder
	matcher *matching.Matcher
}

// NewExecutor creates a new hook executor
func NewExecutor(ctx *Context, builder *commands.Builder, matcher *matching.Matcher) *Executor {
	return &Executor{ctx: ctx, builder: builder, matcher: matcher}
}

// Run executes one hook over files, which have already been filtered for it.
func (e *Executor) Run(ctx context.Context, item RunItem, files []string) Result {
	start := time.Now()
	result := Result{Hook: item.Hook, Files: files}

	if e.ctx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.ctx.Timeout)
		defer cancel()
	}

	args := files
	if !item.Hook.ShouldPassFilenames() {
		args = nil
	}

	var (
		output []byte
		code   int
		err    error
	)
	switch item.Hook.Language {
	case commands.LanguageFail:
		output, code = runFail(item.Hook.Entry, args)
	case commands.LanguagePygrep:
		output, code, err = Pygrep(ctx, item.Hook.Entry, item.Hook.Args, args, e.ctx.RepoRoot)
	case commands.LanguageMeta:
		output, code, err = e.runMeta(item.Hook, files)
	default:
		output, code, err = e.runProcess(ctx, item, args)
	}

	e.processExecutionResult(&result, output, code, err, start)
	logger.Debug(ctx, "hook finished", "id", item.Hook.ID, "exit", result.ExitCode, "files", len(files), "duration", result.Duration)
	return result
}

// runProcess runs the hook command over every batch of files.
func (e *Executor) runProcess(ctx context.Context, item RunItem, files []string) ([]byte, int, error) {
	cmd, err := e.builder.Command(item.Hook, item.RepoPath)
	if err != nil {
		return nil, 1, err
	}

	env := hookEnv(e.ctx.Env)
	concurrency := e.concurrency(item)
	batches, err := Partition(cmd, files, concurrency, MaxCommandLength(env))
	if err != nil {
		return nil, 1, err
	}

	outputs := make([][]byte, len(batches))
	codes := make([]int, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, argv := range batches {
		g.Go(func() error {
			out, code, err := e.execute(gctx, argv, env)
			outputs[i], codes[i] = out, code
			return err
		})
	}
	err = g.Wait()

	return bytes.Join(outputs, nil), slices.Max(codes), err
}

// execute runs one batch. A non-zero exit is reported through the code, not
// the error.
func (e *Executor) execute(ctx context.Context, argv, env []string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) // #nosec G204 -- running configured hooks is the point
	cmd.Dir = e.ctx.RepoRoot
	cmd.Env = env

	output, err := cmd.CombinedOutput()
	if err == nil {
		return output, 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return output, 1, ctxErr
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return output, exitError.ExitCode(), nil
	}
	return output, 1, err
}

func (e *Executor) concurrency(item RunItem) int {
	if item.Hook.IsSerial() {
		return 1
	}
	if e.ctx.Concurrency > 0 {
		return e.ctx.Concurrency
	}
	return runtime.NumCPU()
}

// processExecutionResult fills in result from the outcome of a run.
func (e *Executor) processExecutionResult(result *Result, output []byte, code int, execErr error, start time.Time) {
	result.Output = string(output)
	result.Duration = time.Since(start)
	result.ExitCode = code

	switch {
	case execErr == nil:
	case errors.Is(execErr, context.DeadlineExceeded):
		result.Timeout = true
		result.Error = fmt.Sprintf("Hook timed out after %v", e.ctx.Timeout)
	case isExecutableNotFoundError(execErr):
		result.Error = fmt.Sprintf("Executable not found: %s", execErr.Error())
	default:
		result.Error = execErr.Error()
	}
	if execErr != nil && result.ExitCode == 0 {
		result.ExitCode = 1
	}

	result.Success = result.ExitCode == 0
}

func isExecutableNotFoundError(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, commands.ErrLanguageUnavailable)
}

// runFail prints the entry and the offending files and fails.
func runFail(entry string, files []string) ([]byte, int) {
	var b strings.Builder
	b.WriteString(entry)
	b.WriteString("\n\n")
	for _, f := range files {
		b.WriteString(f)
		b.WriteByte('\n')
	}
	return []byte(b.String()), 1
}
