// Package commands turns a hook definition into the argument vector that
// runs it.
package commands

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/google/shlex"

	"github.com/blairham/hookgate/pkg/config"
)

// Language constants
const (
	LanguageSystem = "system"
	LanguageScript = "script"
	LanguageFail   = "fail"
	LanguagePygrep = "pygrep"
	LanguageMeta   = "meta"
)

// Errors returned by Command.
var (
	ErrEmptyEntry           = errors.New("hook entry is empty")
	ErrLanguageUnavailable  = errors.New("language environment is not available")
	ErrRemoteScriptNotFound = errors.New("script hooks need a checkout of their repository")
)

// Builder handles building commands for different hook languages
type Builder struct {
	repoRoot string
	lookPath func(string) (string, error)
}

// NewBuilder creates a new command builder
func NewBuilder(repoRoot string) *Builder {
	return &Builder{repoRoot: repoRoot, lookPath: exec.LookPath}
}

// WithLookPath replaces the PATH lookup, mainly for tests.
func (b *Builder) WithLookPath(fn func(string) (string, error)) *Builder {
	b.lookPath = fn
	return b
}

// Command returns entry followed by args, without filenames. repoPath is the
// checkout the hook comes from; empty for hooks of remote repositories.
func (b *Builder) Command(hook config.Hook, repoPath string) ([]string, error) {
	argv, err := SplitEntry(hook.Entry)
	if err != nil {
		return nil, fmt.Errorf("hook %s: %w", hook.ID, err)
	}

	switch hook.Language {
	case LanguageSystem, "":
	case LanguageScript:
		if repoPath == "" {
			return nil, fmt.Errorf("hook %s: %w", hook.ID, ErrRemoteScriptNotFound)
		}
		argv[0] = filepath.Join(repoPath, filepath.FromSlash(argv[0]))
	default:
		// Environments are not provisioned; the tool must already be on PATH.
		if _, err := b.lookPath(argv[0]); err != nil {
			return nil, fmt.Errorf("hook %s: %w: %s hook entry %q not found on PATH",
				hook.ID, ErrLanguageUnavailable, hook.Language, argv[0])
		}
	}

	return append(argv, hook.Args...), nil
}

// SplitEntry splits an entry with shell quoting rules.
func SplitEntry(entry string) ([]string, error) {
	argv, err := shlex.Split(entry)
	if err != nil {
		return nil, fmt.Errorf("invalid entry %q: %w", entry, err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyEntry
	}
	return argv, nil
}
