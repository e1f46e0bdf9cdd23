package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/blairham/hookgate/pkg/manifest"
)

// Errors returned while reading a hook repository.
var (
	ErrRevisionNotFound = errors.New("revision not found")
	ErrNoManifest       = errors.New("no " + manifest.FileName + " at revision")
)

// FetchManifest clones url into memory and returns the raw hook manifest at
// rev. Nothing is written to disk.
func FetchManifest(ctx context.Context, url, rev string) ([]byte, error) {
	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", url, err)
	}

	data, err := ManifestAt(repo, rev)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return data, nil
}

// ManifestAt returns the raw hook manifest stored in repo at rev.
func ManifestAt(repo *git.Repository, rev string) ([]byte, error) {
	hash, err := resolveCommit(repo, rev)
	if err != nil {
		return nil, err
	}

	commit, err := repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", rev, err)
	}

	file, err := commit.File(manifest.FileName)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, fmt.Errorf("%w %s", ErrNoManifest, rev)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", manifest.FileName, rev, err)
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", manifest.FileName, rev, err)
	}
	return []byte(contents), nil
}
