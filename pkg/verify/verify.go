// Package verify checks that every hook a configuration references exists in
// its repository at the pinned revision.
package verify

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blairham/hookgate/internal/logger"
	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/manifest"
)

// DefaultConcurrency bounds simultaneous manifest fetches.
const DefaultConcurrency = 4

// Finding is one problem with a configured hook.
type Finding struct {
	Field   string
	HookID  string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// RepoResult holds the outcome for one entry of repos.
type RepoResult struct {
	Repo     string
	Rev      string
	Findings []Finding
	// Err is set when the manifest could not be obtained.
	Err error
}

// OK reports whether the repo was verified without findings.
func (r RepoResult) OK() bool { return r.Err == nil && len(r.Findings) == 0 }

// Report is the result of verifying a configuration, in config order.
type Report struct {
	Repos []RepoResult
}

// OK reports whether every repo verified cleanly.
func (r *Report) OK() bool {
	for _, repo := range r.Repos {
		if !repo.OK() {
			return false
		}
	}
	return true
}

// Findings returns all findings in config order.
func (r *Report) Findings() []Finding {
	var out []Finding
	for _, repo := range r.Repos {
		out = append(out, repo.Findings...)
	}
	return out
}

// Verifier checks configurations against hook manifests.
type Verifier struct {
	source      Source
	concurrency int
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithConcurrency sets the fetch limit. Values below one mean one.
func WithConcurrency(n int) Option {
	return func(v *Verifier) { v.concurrency = max(n, 1) }
}

// New creates a Verifier reading manifests from source.
func New(source Source, opts ...Option) *Verifier {
	v := &Verifier{source: source, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks every repo of cfg. Failure to fetch one repository is
// recorded in its RepoResult; the returned error is only set when ctx ends.
func (v *Verifier) Verify(ctx context.Context, cfg *config.Config) (*Report, error) {
	defer logger.Timing(ctx, "verify", time.Now())

	report := &Report{Repos: make([]RepoResult, len(cfg.Repos))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)

	for i, repo := range cfg.Repos {
		result := &report.Repos[i]
		result.Repo, result.Rev = repo.Repo, repo.Rev
		path := fmt.Sprintf("repos[%d]", i)

		switch {
		case repo.IsLocal():
			result.Findings = checkLocal(path, repo)
		case repo.IsMeta():
			result.Findings = checkMeta(path, repo)
		default:
			g.Go(func() error {
				result.Findings, result.Err = v.checkRemote(gctx, path, repo)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

func (v *Verifier) checkRemote(ctx context.Context, path string, repo config.Repo) ([]Finding, error) {
	data, err := v.source.Manifest(ctx, repo.Repo, repo.Rev)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", manifest.FileName, repo.Rev, err)
	}

	logger.Debug(ctx, "verifying hooks", "repo", repo.Repo, "rev", repo.Rev, "available", m.IDs())

	var findings []Finding
	for j, hook := range repo.Hooks {
		if _, err := m.Lookup(hook.ID); err != nil {
			findings = append(findings, Finding{
				Field:   fmt.Sprintf("%s.hooks[%d].id", path, j),
				HookID:  hook.ID,
				Message: fmt.Sprintf("%q is not present in repository %s at revision %s", hook.ID, repo.Repo, repo.Rev),
			})
		}
	}
	return findings, nil
}

func checkLocal(path string, repo config.Repo) []Finding {
	var findings []Finding
	for j, hook := range repo.Hooks {
		hookPath := fmt.Sprintf("%s.hooks[%d]", path, j)
		for _, req := range []struct{ field, value string }{
			{"name", hook.Name},
			{"entry", hook.Entry},
			{"language", hook.Language},
		} {
			if req.value == "" {
				findings = append(findings, Finding{
					Field:   hookPath + "." + req.field,
					HookID:  hook.ID,
					Message: fmt.Sprintf("local hook %q must set %s", hook.ID, req.field),
				})
			}
		}
	}
	return findings
}

func checkMeta(path string, repo config.Repo) []Finding {
	var findings []Finding
	for j, hook := range repo.Hooks {
		if !slices.Contains(config.MetaHookIDs, hook.ID) {
			findings = append(findings, Finding{
				Field:   fmt.Sprintf("%s.hooks[%d].id", path, j),
				HookID:  hook.ID,
				Message: fmt.Sprintf("%q is not a meta hook", hook.ID),
			})
		}
	}
	return findings
}
