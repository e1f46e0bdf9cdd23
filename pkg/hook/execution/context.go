// Package execution handles the core hook execution logic
package execution

import (
	"slices"
	"strings"
	"time"

	"github.com/blairham/hookgate/pkg/config"
)

// SkipEnv names the environment variable listing hook ids to skip.
const SkipEnv = "SKIP"

// Context holds context for hook execution
type Context struct {
	Config    *config.Config
	RepoRoot  string
	HookStage string
	// HookIDs restricts the run to hooks with these ids or aliases.
	HookIDs []string
	// Skip lists ids and aliases from $SKIP.
	Skip  []string
	Files []string
	// Env is appended to the process environment of every hook.
	Env         []string
	Timeout     time.Duration
	Concurrency int
	AllFiles    bool
	Verbose     bool
	// Hooks holds every configured hook with its manifest definition
	// applied, whatever its stage. Meta hooks inspect it.
	Hooks []RunItem
	// ListFiles returns every tracked file.
	ListFiles func() ([]string, error)
	// Fingerprint summarises the work tree so that a hook which rewrites
	// files can be detected. Nil disables the check.
	Fingerprint func() (string, error)
}

// ParseSkip splits the comma-separated value of $SKIP.
func ParseSkip(value string) []string {
	var ids []string
	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Selected reports whether hook was requested on the command line.
func (c *Context) Selected(hook config.Hook) bool {
	if len(c.HookIDs) == 0 {
		return true
	}
	return slices.Contains(c.HookIDs, hook.ID) || (hook.Alias != "" && slices.Contains(c.HookIDs, hook.Alias))
}

// Skipped reports whether $SKIP names the hook.
func (c *Context) Skipped(hook config.Hook) bool {
	return slices.Contains(c.Skip, hook.ID) || (hook.Alias != "" && slices.Contains(c.Skip, hook.Alias))
}

// Stage returns the stage being run, defaulting to pre-commit.
func (c *Context) Stage() string {
	if c.HookStage == "" {
		return config.HookTypePreCommit
	}
	return c.HookStage
}

// Reasons a hook did not run
const (
	ReasonNoFiles = "(no files to check)"
	ReasonSkipped = ""
)

// Result represents the result of hook execution
type Result struct {
	Output     string
	Error      string
	SkipReason string
	Files      []string
	Hook       config.Hook
	Duration   time.Duration
	ExitCode   int
	Success    bool
	Timeout    bool
	Skipped    bool
	Modified   bool
}

// RunItem represents a hook to be executed with its repository context
type RunItem struct {
	// RepoPath is the checkout script hooks resolve against; empty for
	// remote repositories.
	RepoPath string
	Repo     config.Repo
	Hook     config.Hook
}
