// Package hook selects the configured hooks for a run and executes them in
// order.
package hook

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/blairham/hookgate/internal/logger"
	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/hook/commands"
	"github.com/blairham/hookgate/pkg/hook/execution"
	"github.com/blairham/hookgate/pkg/hook/matching"
	"github.com/blairham/hookgate/pkg/manifest"
	"github.com/blairham/hookgate/pkg/verify"
)

// ErrHookFailed is returned by RunHooks when at least one hook failed.
var ErrHookFailed = errors.New("one or more hooks failed")

// Orchestrator coordinates hook execution
type Orchestrator struct {
	ctx      *execution.Context
	source   verify.Source
	executor *execution.Executor
	builder  *commands.Builder
	matcher  *matching.Matcher
	plan     func([]execution.RunItem)
	report   func(execution.Result)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter is called with every result as soon as it is known.
func WithReporter(fn func(execution.Result)) Option {
	return func(o *Orchestrator) { o.report = fn }
}

// WithPlan is called once with the hooks selected for the run, before the
// first one starts.
func WithPlan(fn func([]execution.RunItem)) Option {
	return func(o *Orchestrator) { o.plan = fn }
}

// WithMatcher replaces the file matcher, mostly for tests.
func WithMatcher(m *matching.Matcher) Option {
	return func(o *Orchestrator) { o.matcher = m }
}

// WithBuilder replaces the command builder.
func WithBuilder(b *commands.Builder) Option {
	return func(o *Orchestrator) { o.builder = b }
}

// NewOrchestrator creates a new hook orchestrator. source resolves the
// manifests of remote repositories.
func NewOrchestrator(ctx *execution.Context, source verify.Source, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		ctx:     ctx,
		source:  source,
		matcher: matching.NewMatcher(ctx.RepoRoot),
		builder: commands.NewBuilder(ctx.RepoRoot),
		plan:    func([]execution.RunItem) {},
		report:  func(execution.Result) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.executor = execution.NewExecutor(ctx, o.builder, o.matcher)
	return o
}

// Collect resolves every configured hook against its definition, in
// configuration order, regardless of stage.
func (o *Orchestrator) Collect(ctx context.Context) ([]execution.RunItem, error) {
	start := time.Now()
	defer logger.Timing(ctx, "hook collection", start)

	var items []execution.RunItem
	for _, repo := range o.ctx.Config.Repos {
		defs, err := o.definitions(ctx, repo)
		if err != nil {
			return nil, err
		}
		for _, hook := range repo.Hooks {
			item, err := o.runItem(repo, hook, defs)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	return items, nil
}

// definitions returns the manifest of a remote repository, or nil.
func (o *Orchestrator) definitions(ctx context.Context, repo config.Repo) (*manifest.Manifest, error) {
	if !repo.IsRemote() {
		return nil, nil
	}
	if o.source == nil {
		return nil, fmt.Errorf("no manifest source for %s", repo.Repo)
	}
	data, err := o.source.Manifest(ctx, repo.Repo, repo.Rev)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hooks of %s@%s: %w", repo.Repo, repo.Rev, err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid %s in %s@%s: %w", manifest.FileName, repo.Repo, repo.Rev, err)
	}
	return m, nil
}

func (o *Orchestrator) runItem(repo config.Repo, hook config.Hook, defs *manifest.Manifest) (execution.RunItem, error) {
	item := execution.RunItem{Repo: repo, Hook: hook}
	switch {
	case repo.IsLocal():
		item.RepoPath = o.ctx.RepoRoot
	case repo.IsMeta():
		def, ok := execution.MetaHook(hook.ID)
		if !ok {
			return item, fmt.Errorf("%q is not a meta hook", hook.ID)
		}
		item.Hook = manifest.Apply(def, hook)
	default:
		def, err := defs.Lookup(hook.ID)
		if err != nil {
			return item, fmt.Errorf("%s@%s: %w", repo.Repo, repo.Rev, err)
		}
		item.Hook = manifest.Apply(def, hook)
	}
	return item, nil
}

// selected returns the items for the current stage and command line, in
// order.
func (o *Orchestrator) selected(items []execution.RunItem) []execution.RunItem {
	stage := o.ctx.Stage()
	var out []execution.RunItem
	for _, item := range items {
		if !slices.Contains(o.ctx.Config.HookStages(item.Hook), stage) {
			continue
		}
		if !o.ctx.Selected(item.Hook) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// RunHooks executes the selected hooks one after another. The returned
// error is ErrHookFailed when a hook failed, or the reason the run could not
// start.
func (o *Orchestrator) RunHooks(ctx context.Context) ([]execution.Result, error) {
	overallStart := time.Now()
	defer logger.Timing(ctx, "run", overallStart)

	items, err := o.Collect(ctx)
	if err != nil {
		return nil, err
	}
	o.ctx.Hooks = items

	toRun := o.selected(items)
	if len(o.ctx.HookIDs) > 0 && len(toRun) == 0 {
		return nil, fmt.Errorf("no hook with id %q in stage %q", o.ctx.HookIDs[0], o.ctx.Stage())
	}

	files, err := o.matcher.Filter(o.ctx.Files, o.ctx.Config.Files, o.ctx.Config.Exclude)
	if err != nil {
		return nil, fmt.Errorf("top level: %w", err)
	}
	o.plan(toRun)

	var (
		results []execution.Result
		failed  bool
	)
	for _, item := range toRun {
		result := o.runOne(ctx, item, files)
		results = append(results, result)
		o.report(result)

		if result.Skipped || result.Success {
			continue
		}
		failed = true
		if o.ctx.Config.FailFast || item.Hook.StopsRun() {
			logger.Debug(ctx, "stopping after failure", "id", item.Hook.ID)
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	if failed {
		return results, ErrHookFailed
	}
	return results, nil
}

func (o *Orchestrator) runOne(ctx context.Context, item execution.RunItem, files []string) execution.Result {
	hook := item.Hook
	if o.ctx.Skipped(hook) {
		return execution.Result{Hook: hook, Skipped: true, SkipReason: execution.ReasonSkipped}
	}

	hookFiles, err := o.matcher.FilesForHook(hook, files)
	if err != nil {
		return execution.Result{Hook: hook, ExitCode: 1, Error: err.Error()}
	}
	if len(hookFiles) == 0 && !hook.ShouldAlwaysRun() {
		return execution.Result{Hook: hook, Skipped: true, SkipReason: execution.ReasonNoFiles}
	}

	before := o.fingerprint(ctx)
	result := o.executor.Run(ctx, item, hookFiles)
	if before != "" && o.fingerprint(ctx) != before {
		result.Modified = true
		result.Success = false
	}
	return result
}

func (o *Orchestrator) fingerprint(ctx context.Context) string {
	if o.ctx.Fingerprint == nil {
		return ""
	}
	fp, err := o.ctx.Fingerprint()
	if err != nil {
		logger.Warn(ctx, "cannot detect file modifications", "err", err)
		return ""
	}
	return fp
}
