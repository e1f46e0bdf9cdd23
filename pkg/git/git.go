// Package git provides the repository operations hookgate needs: locating the
// work tree, listing files for hooks and managing hook scripts.
package git

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotRepository is returned when no enclosing git work tree exists.
var ErrNotRepository = errors.New("not in a git repository")

// Repository represents a git repository
type Repository struct {
	repo *git.Repository
	Root string
}

// NewRepository opens the repository enclosing path.
func NewRepository(path string) (*Repository, error) {
	root, err := FindGitRoot(path)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &Repository{Root: root, repo: repo}, nil
}

// FindGitRoot finds the root of the git repository
func FindGitRoot(path string) (string, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		if _, ok := gitDir(path); ok {
			return path, nil
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", ErrNotRepository
		}
		path = parent
	}
}

// gitDir returns the git directory of a work tree root. Worktrees and
// submodules use a .git file pointing elsewhere.
func gitDir(root string) (string, bool) {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		return dotGit, true
	}

	content, err := os.ReadFile(filepath.Clean(dotGit))
	if err != nil {
		return "", false
	}
	line := strings.TrimSpace(string(content))
	target, ok := strings.CutPrefix(line, "gitdir: ")
	if !ok {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	return target, true
}

// StagedFiles returns the added, copied, modified and renamed files in the
// index, sorted.
func (r *Repository) StagedFiles() ([]string, error) {
	status, err := r.status()
	if err != nil {
		return nil, err
	}

	var files []string
	for file, st := range status {
		switch st.Staging {
		case git.Added, git.Modified, git.Copied, git.Renamed:
			files = append(files, file)
		}
	}
	slices.Sort(files)
	return files, nil
}

// AllFiles returns every file in the index, like git ls-files.
func (r *Repository) AllFiles() ([]string, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	files := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		files = append(files, e.Name)
	}
	slices.Sort(files)
	return files, nil
}

// ChangedFiles returns files added or modified between two revisions, as
// used for pre-push and --from-ref/--to-ref runs.
func (r *Repository) ChangedFiles(fromRef, toRef string) ([]string, error) {
	fromTree, err := r.tree(fromRef)
	if err != nil {
		return nil, err
	}
	toTree, err := r.tree(toRef)
	if err != nil {
		return nil, err
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to get diff between %s and %s: %w", fromRef, toRef, err)
	}

	var files []string
	for _, change := range changes {
		if change.To.Name != "" {
			files = append(files, change.To.Name)
		}
	}
	slices.Sort(files)
	return files, nil
}

// HasCommit reports whether rev names a commit in the local object store.
func (r *Repository) HasCommit(rev string) bool {
	_, err := resolveCommit(r.repo, rev)
	return err == nil
}

// HasUnstagedChanges reports whether a tracked path differs between the
// index and the work tree. Untracked files have no unstaged changes.
func (r *Repository) HasUnstagedChanges(path string) (bool, error) {
	status, err := r.status()
	if err != nil {
		return false, err
	}
	st, ok := status[filepath.ToSlash(path)]
	if !ok || st.Worktree == git.Untracked {
		return false, nil
	}
	return st.Worktree != git.Unmodified, nil
}

// WorktreeFingerprint hashes the path and content of every file that differs
// from the index, so a change between two calls means something rewrote the
// work tree.
func (r *Repository) WorktreeFingerprint() (string, error) {
	status, err := r.status()
	if err != nil {
		return "", err
	}
	var dirty []string
	for path, st := range status {
		if st.Worktree != git.Unmodified {
			dirty = append(dirty, path)
		}
	}
	slices.Sort(dirty)

	h := sha256.New()
	for _, path := range dirty {
		h.Write([]byte(path))
		h.Write([]byte{0})
		data, err := os.ReadFile(filepath.Join(r.Root, filepath.FromSlash(path)))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		h.Write(data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HooksDir returns the directory git runs hook scripts from.
func (r *Repository) HooksDir() string {
	if dir, ok := gitDir(r.Root); ok {
		// Linked worktrees share the hooks of the main repository.
		if common, err := os.ReadFile(filepath.Join(dir, "commondir")); err == nil {
			c := strings.TrimSpace(string(common))
			if !filepath.IsAbs(c) {
				c = filepath.Join(dir, c)
			}
			return filepath.Join(filepath.Clean(c), "hooks")
		}
		return filepath.Join(dir, "hooks")
	}
	return filepath.Join(r.Root, ".git", "hooks")
}

// HookPath returns the path of the named hook script.
func (r *Repository) HookPath(hookType string) string {
	return filepath.Join(r.HooksDir(), hookType)
}

// InstallHook installs a git hook
func (r *Repository) InstallHook(hookType, script string) error {
	hooksDir := r.HooksDir()
	if err := os.MkdirAll(hooksDir, 0o750); err != nil {
		return fmt.Errorf("failed to create hooks directory: %w", err)
	}

	hookPath := r.HookPath(hookType)
	if err := os.WriteFile(hookPath, []byte(script), 0o600); err != nil {
		return fmt.Errorf("failed to write hook file: %w", err)
	}

	// #nosec G302 - Hook scripts need to be executable
	if err := os.Chmod(hookPath, 0o700); err != nil {
		return fmt.Errorf("failed to make hook executable: %w", err)
	}

	return nil
}

// UninstallHook removes a git hook
func (r *Repository) UninstallHook(hookType string) error {
	if err := os.Remove(r.HookPath(hookType)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove hook: %w", err)
	}
	return nil
}

// HasHook checks if a hook is installed
func (r *Repository) HasHook(hookType string) bool {
	_, err := os.Stat(r.HookPath(hookType))
	return err == nil
}

// ReadHook returns the content of an installed hook script.
func (r *Repository) ReadHook(hookType string) ([]byte, error) {
	return os.ReadFile(filepath.Clean(r.HookPath(hookType)))
}

func (r *Repository) status() (git.Status, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return status, nil
}

func (r *Repository) tree(ref string) (*object.Tree, error) {
	hash, err := resolveCommit(r.repo, ref)
	if err != nil {
		return nil, err
	}
	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", ref, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for %s: %w", ref, err)
	}
	return tree, nil
}

// resolveCommit resolves a tag, branch or commit hash to a commit. Branches
// of a fresh clone only exist as remote-tracking refs.
func resolveCommit(repo *git.Repository, rev string) (plumbing.Hash, error) {
	for _, candidate := range []string{rev, "origin/" + rev} {
		if h, err := repo.ResolveRevision(plumbing.Revision(candidate)); err == nil {
			return *h, nil
		}
	}
	if plumbing.IsHash(rev) {
		h := plumbing.NewHash(rev)
		if _, err := repo.CommitObject(h); err == nil {
			return h, nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrRevisionNotFound, rev)
}
