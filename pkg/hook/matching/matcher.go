// Package matching handles filtering and type matching for hooks
package matching

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/identify"
	"github.com/blairham/hookgate/pkg/regex"
)

// TagFunc returns the type tags for a path.
type TagFunc func(path string) (identify.Tags, error)

// Matcher filters repository-relative file names for hooks. Type tags are
// computed once per file and reused across hooks.
type Matcher struct {
	root string
	tags TagFunc

	mu    sync.Mutex
	cache map[string]identify.Tags
}

// NewMatcher creates a matcher for files relative to root.
func NewMatcher(root string) *Matcher {
	return &Matcher{root: root, tags: identify.FromPath, cache: make(map[string]identify.Tags)}
}

// WithTagFunc replaces the tag lookup, mainly for tests.
func (m *Matcher) WithTagFunc(fn TagFunc) *Matcher {
	m.tags = fn
	return m
}

// Filter keeps the files matched by include and not matched by exclude. An
// empty include matches everything; an empty exclude matches nothing.
func (m *Matcher) Filter(files []string, include, exclude string) ([]string, error) {
	inc, exc, err := compilePair(include, exclude)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, file := range files {
		ok, err := matchPair(file, inc, exc)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, file)
		}
	}
	return out, nil
}

// FilesForHook returns the files that match the hook's filters.
func (m *Matcher) FilesForHook(hook config.Hook, files []string) ([]string, error) {
	inc, exc, err := compilePair(hook.Files, hook.Exclude)
	if err != nil {
		return nil, fmt.Errorf("hook %s: %w", hook.ID, err)
	}

	var out []string
	for _, file := range files {
		ok, err := matchPair(file, inc, exc)
		if err != nil {
			return nil, fmt.Errorf("hook %s: %w", hook.ID, err)
		}
		if !ok {
			continue
		}
		ok, err = m.matchesTypes(file, hook)
		if err != nil {
			return nil, fmt.Errorf("hook %s: %w", hook.ID, err)
		}
		if ok {
			out = append(out, file)
		}
	}
	return out, nil
}

// ExcludeMatchesAny reports whether the pattern excludes at least one file.
// An empty exclude is never useless.
func (m *Matcher) ExcludeMatchesAny(files []string, include, exclude string) (bool, error) {
	if exclude == "" {
		return true, nil
	}
	inc, exc, err := compilePair(include, exclude)
	if err != nil {
		return false, err
	}
	for _, file := range files {
		if inc != nil {
			ok, err := inc.Search(file)
			if err != nil {
				return false, err
			}
			if !ok {
				continue
			}
		}
		ok, err := exc.Search(file)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Tags returns the cached tags for file.
func (m *Matcher) Tags(file string) (identify.Tags, error) {
	m.mu.Lock()
	tags, ok := m.cache[file]
	m.mu.Unlock()
	if ok {
		return tags, nil
	}

	tags, err := m.tags(filepath.Join(m.root, filepath.FromSlash(file)))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[file] = tags
	m.mu.Unlock()
	return tags, nil
}

// matchesTypes applies types (all), types_or (any) and exclude_types (none).
// A file that no longer exists on disk matches no type filter.
func (m *Matcher) matchesTypes(file string, hook config.Hook) (bool, error) {
	if len(hook.Types) == 0 && len(hook.TypesOr) == 0 && len(hook.ExcludeTypes) == 0 {
		return true, nil
	}

	tags, err := m.Tags(file)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !tags.HasAll(hook.Types) {
		return false, nil
	}
	if len(hook.TypesOr) > 0 && !tags.HasAny(hook.TypesOr) {
		return false, nil
	}
	return !tags.HasAny(hook.ExcludeTypes), nil
}

func compilePair(include, exclude string) (inc, exc *regex.Pattern, err error) {
	if include != "" {
		if inc, err = regex.Compile(include); err != nil {
			return nil, nil, fmt.Errorf("files: %w", err)
		}
	}
	if exclude != "" {
		if exc, err = regex.Compile(exclude); err != nil {
			return nil, nil, fmt.Errorf("exclude: %w", err)
		}
	}
	return inc, exc, nil
}

func matchPair(file string, inc, exc *regex.Pattern) (bool, error) {
	if inc != nil {
		ok, err := inc.Search(file)
		if err != nil || !ok {
			return false, err
		}
	}
	if exc != nil {
		ok, err := exc.Search(file)
		if err != nil || ok {
			return false, err
		}
	}
	return true, nil
}
