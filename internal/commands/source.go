package commands

import (
	"context"
	"path/filepath"

	"github.com/blairham/hookgate/internal/logger"
	"github.com/blairham/hookgate/pkg/cache"
	"github.com/blairham/hookgate/pkg/verify"
)

// upstream fetches manifests that are not cached. Tests replace it.
var upstream verify.Source = verify.GitSource

// manifestSource returns upstream behind the on-disk cache. Without a
// usable cache, or with noCache, it returns upstream alone. The returned
// func releases the cache.
func manifestSource(ctx context.Context, noCache bool, configPath string) (verify.Source, func()) {
	if noCache {
		return upstream, func() {}
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		logger.Warn(ctx, "manifest cache disabled", "err", err)
		return upstream, func() {}
	}
	mgr, err := cache.NewManager(ctx, dir)
	if err != nil {
		logger.Warn(ctx, "manifest cache disabled", "err", err)
		return upstream, func() {}
	}
	if n, err := mgr.Entries(ctx); err == nil {
		logger.Debug(ctx, "manifest cache opened", "db", mgr.DBPath(), "entries", n)
	}
	if abs, err := filepath.Abs(configPath); err == nil {
		if err := mgr.MarkConfigUsed(ctx, abs); err != nil {
			logger.Debug(ctx, "failed to record config", "err", err)
		}
	}
	return &verify.CachedSource{Cache: mgr, Next: upstream}, func() {
		if err := mgr.Close(); err != nil {
			logger.Warn(ctx, "failed to close cache", "err", err)
		}
	}
}
