// Package cache keeps fetched hook manifests in a SQLite database so that
// verifying a configuration does not clone every repository again.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/blairham/hookgate/internal/logger"
)

// Environment variables consulted by DefaultDir.
const (
	HomeEnv     = "PRE_COMMIT_HOME"
	XDGCacheEnv = "XDG_CACHE_HOME"
)

const (
	dbName   = "db.db"
	lockName = ".lock"
)

// lockTimeout bounds how long a writer waits for another process.
const lockTimeout = 30 * time.Second

// DefaultDir returns the cache directory: $PRE_COMMIT_HOME, else
// $XDG_CACHE_HOME/hookgate, else ~/.cache/hookgate.
func DefaultDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv(XDGCacheEnv); xdg != "" {
		return filepath.Join(xdg, "hookgate"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "hookgate"), nil
}

// Manager handles cache operations and database management
type Manager struct {
	db       *sql.DB
	cacheDir string
	dbPath   string
}

// NewManager opens (creating if needed) the cache in cacheDir.
func NewManager(ctx context.Context, cacheDir string) (*Manager, error) {
	if err := os.MkdirAll(cacheDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	lockPath := filepath.Join(cacheDir, lockName)
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		if err := os.WriteFile(lockPath, []byte{}, 0o600); err != nil {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}
	}

	dbPath := filepath.Join(cacheDir, dbName)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := initDatabase(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn(ctx, "failed to close cache database", "err", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Manager{db: db, cacheDir: cacheDir, dbPath: dbPath}, nil
}

// Manifest returns the cached manifest for repo at rev, and whether one was
// found.
func (m *Manager) Manifest(ctx context.Context, repo, rev string) ([]byte, bool, error) {
	var data []byte
	err := m.db.QueryRowContext(ctx,
		"SELECT data FROM manifests WHERE repo = ? AND ref = ?", repo, rev,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached manifest for %s@%s: %w", repo, rev, err)
	}
	return data, true, nil
}

// StoreManifest records the manifest for repo at rev.
func (m *Manager) StoreManifest(ctx context.Context, repo, rev string, data []byte) error {
	lock := NewFileLock(m.cacheDir)
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	return lock.WithLock(ctx, func() error {
		_, err := m.db.ExecContext(ctx,
			"INSERT OR REPLACE INTO manifests (repo, ref, data, fetched_at) VALUES (?, ?, ?, ?)",
			repo, rev, data, time.Now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to cache manifest for %s@%s: %w", repo, rev, err)
		}
		logger.Debug(ctx, "cached manifest", "repo", repo, "rev", rev, "bytes", len(data))
		return nil
	})
}

// Entries returns how many manifests are cached.
func (m *Manager) Entries(ctx context.Context) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM manifests").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached manifests: %w", err)
	}
	return n, nil
}

// MarkConfigUsed records a configuration file that used the cache.
func (m *Manager) MarkConfigUsed(ctx context.Context, configPath string) error {
	normalizedPath, err := normalizePath(configPath)
	if err != nil {
		return err
	}

	// Config files that do not exist are not recorded.
	if _, statErr := os.Stat(normalizedPath); os.IsNotExist(statErr) {
		return nil
	}

	_, err = m.db.ExecContext(ctx, "INSERT OR IGNORE INTO configs VALUES (?)", normalizedPath)
	return err
}

// Configs returns the recorded configuration files.
func (m *Manager) Configs(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT path FROM configs ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Dir returns the cache directory
func (m *Manager) Dir() string {
	return m.cacheDir
}

// DBPath returns the database path
func (m *Manager) DBPath() string {
	return m.dbPath
}

// Clean removes the cache directory. A missing directory is not an error.
func Clean(cacheDir string) error {
	if err := os.RemoveAll(cacheDir); err != nil {
		return fmt.Errorf("failed to remove cache %s: %w", cacheDir, err)
	}
	return nil
}

// normalizePath resolves symlinks so one file is recorded once.
func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return absPath, nil //nolint:nilerr // fall back to the absolute path
	}
	return realPath, nil
}

func initDatabase(ctx context.Context, db *sql.DB) error {
	createManifestsTable := `
	CREATE TABLE IF NOT EXISTS manifests (
		repo TEXT NOT NULL,
		ref TEXT NOT NULL,
		data BLOB NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (repo, ref)
	);`

	createConfigsTable := `
	CREATE TABLE IF NOT EXISTS configs (
		path TEXT NOT NULL,
		PRIMARY KEY (path)
	);`

	if _, err := db.ExecContext(ctx, createManifestsTable); err != nil {
		return fmt.Errorf("failed to create manifests table: %w", err)
	}

	if _, err := db.ExecContext(ctx, createConfigsTable); err != nil {
		return fmt.Errorf("failed to create configs table: %w", err)
	}

	return nil
}
