package verify

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/blairham/hookgate/internal/logger"
	"github.com/blairham/hookgate/pkg/cache"
	"github.com/blairham/hookgate/pkg/git"
)

// Source returns the raw .pre-commit-hooks.yaml of repo at rev.
type Source interface {
	Manifest(ctx context.Context, repo, rev string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, repo, rev string) ([]byte, error)

// Manifest calls f.
func (f SourceFunc) Manifest(ctx context.Context, repo, rev string) ([]byte, error) {
	return f(ctx, repo, rev)
}

// GitSource clones each repository into memory.
var GitSource = SourceFunc(git.FetchManifest)

// CachedSource answers from the on-disk cache and falls back to Next,
// storing what Next returns. Concurrent requests for the same repo and rev
// share one fetch.
type CachedSource struct {
	Cache *cache.Manager
	Next  Source

	group singleflight.Group
}

// Manifest implements Source.
func (s *CachedSource) Manifest(ctx context.Context, repo, rev string) ([]byte, error) {
	data, ok, err := s.Cache.Manifest(ctx, repo, rev)
	if err != nil {
		logger.Warn(ctx, "manifest cache unavailable", "err", err)
	}
	if ok {
		logger.Debug(ctx, "manifest cache hit", "repo", repo, "rev", rev)
		return data, nil
	}

	v, err, shared := s.group.Do(repo+"@"+rev, func() (any, error) {
		logger.Debug(ctx, "fetching manifest", "repo", repo, "rev", rev)
		data, err := s.Next.Manifest(ctx, repo, rev)
		if err != nil {
			return nil, err
		}
		if err := s.Cache.StoreManifest(ctx, repo, rev, data); err != nil {
			logger.Warn(ctx, "failed to cache manifest", "repo", repo, "err", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug(ctx, "shared manifest fetch", "repo", repo, "rev", rev)
	}
	return v.([]byte), nil
}
