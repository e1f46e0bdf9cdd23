package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/blairham/hookgate/internal/logger"
)

// FileLock is an advisory flock on the cache's .lock file, shared by every
// hookgate process using the same cache directory.
type FileLock struct {
	file     *os.File
	lockPath string
}

// NewFileLock creates a new file lock for the given directory
func NewFileLock(cacheDir string) *FileLock {
	return &FileLock{lockPath: filepath.Join(cacheDir, lockName)}
}

// Lock acquires the lock, waiting until ctx is done.
func (fl *FileLock) Lock(ctx context.Context) error {
	file, err := os.OpenFile(fl.lockPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	fl.file = file

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err == nil {
		return nil
	}
	logger.Debug(ctx, "waiting for cache lock", "path", fl.lockPath)

	if err := ctx.Err(); err != nil {
		fl.release()
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- syscall.Flock(int(file.Fd()), syscall.LOCK_EX)
	}()

	select {
	case err := <-done:
		if err != nil {
			fl.release()
			return fmt.Errorf("failed to acquire file lock: %w", err)
		}
		return nil
	case <-ctx.Done():
		fl.release()
		return ctx.Err()
	}
}

// Unlock releases the file lock
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}

	err := syscall.Flock(int(fl.file.Fd()), syscall.LOCK_UN)
	if closeErr := fl.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	fl.file = nil
	return err
}

// WithLock runs fn while holding the lock.
func (fl *FileLock) WithLock(ctx context.Context, fn func() error) error {
	if err := fl.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if err := fl.Unlock(); err != nil {
			logger.Warn(ctx, "failed to unlock cache", "path", fl.lockPath, "err", err)
		}
	}()

	return fn()
}

func (fl *FileLock) release() {
	_ = fl.file.Close() //nolint:errcheck // the lock error is reported instead
	fl.file = nil
}
