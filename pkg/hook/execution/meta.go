package execution

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/hook/commands"
)

// Meta hook ids
const (
	MetaCheckHooksApply      = "check-hooks-apply"
	MetaCheckUselessExcludes = "check-useless-excludes"
	MetaIdentity             = "identity"
)

var configFilePattern = "^" + regexp.QuoteMeta(config.ConfigFileName) + "$"

var metaHooks = map[string]config.Hook{
	MetaCheckHooksApply: {
		ID:       MetaCheckHooksApply,
		Name:     "Check hooks apply to the repository",
		Entry:    MetaCheckHooksApply,
		Language: commands.LanguageMeta,
		Files:    configFilePattern,
	},
	MetaCheckUselessExcludes: {
		ID:       MetaCheckUselessExcludes,
		Name:     "Check for useless excludes",
		Entry:    MetaCheckUselessExcludes,
		Language: commands.LanguageMeta,
		Files:    configFilePattern,
	},
	MetaIdentity: {
		ID:       MetaIdentity,
		Name:     "identity",
		Entry:    MetaIdentity,
		Language: commands.LanguageMeta,
		Verbose:  config.Bool(true),
	},
}

// MetaHook returns the built-in definition of a meta hook.
func MetaHook(id string) (config.Hook, bool) {
	h, ok := metaHooks[id]
	return h, ok
}

func (e *Executor) runMeta(hook config.Hook, files []string) ([]byte, int, error) {
	switch hook.Entry {
	case MetaIdentity:
		var b strings.Builder
		for _, f := range files {
			b.WriteString(f)
			b.WriteByte('\n')
		}
		return []byte(b.String()), 0, nil
	case MetaCheckHooksApply:
		return e.checkHooksApply()
	case MetaCheckUselessExcludes:
		return e.checkUselessExcludes()
	default:
		return nil, 1, fmt.Errorf("unknown meta hook %q", hook.Entry)
	}
}

// repoFiles returns every tracked file after the top-level files/exclude.
func (e *Executor) repoFiles() ([]string, error) {
	if e.ctx.ListFiles == nil {
		return nil, fmt.Errorf("meta hooks need the repository file list")
	}
	files, err := e.ctx.ListFiles()
	if err != nil {
		return nil, err
	}
	return e.matcher.Filter(files, e.ctx.Config.Files, e.ctx.Config.Exclude)
}

func (e *Executor) checkHooksApply() ([]byte, int, error) {
	files, err := e.repoFiles()
	if err != nil {
		return nil, 1, err
	}

	var out strings.Builder
	code := 0
	for _, item := range e.ctx.Hooks {
		hook := item.Hook
		if item.Repo.IsMeta() || hook.ShouldAlwaysRun() || hook.Language == commands.LanguageFail {
			continue
		}
		matched, err := e.matcher.FilesForHook(hook, files)
		if err != nil {
			return nil, 1, err
		}
		if len(matched) == 0 {
			code = 1
			fmt.Fprintf(&out, "%s does not apply to this repository\n", hook.ID)
		}
	}
	return []byte(out.String()), code, nil
}

func (e *Executor) checkUselessExcludes() ([]byte, int, error) {
	if e.ctx.ListFiles == nil {
		return nil, 1, fmt.Errorf("meta hooks need the repository file list")
	}
	all, err := e.ctx.ListFiles()
	if err != nil {
		return nil, 1, err
	}

	var out strings.Builder
	code := 0

	// the global exclude only ever sees what the global files pattern admits
	ok, err := e.matcher.ExcludeMatchesAny(all, e.ctx.Config.Files, e.ctx.Config.Exclude)
	if err != nil {
		return nil, 1, err
	}
	if !ok {
		code = 1
		fmt.Fprintf(&out, "The global exclude pattern %q does not match any files\n", e.ctx.Config.Exclude)
	}

	// hook excludes see files before the global exclude removes any
	files, err := e.matcher.Filter(all, e.ctx.Config.Files, "")
	if err != nil {
		return nil, 1, err
	}
	for _, item := range e.ctx.Hooks {
		hook := item.Hook
		if item.Repo.IsMeta() || hook.Exclude == "" {
			continue
		}
		// types and files narrow what the exclude could ever see
		candidates := hook
		candidates.Exclude = ""
		included, err := e.matcher.FilesForHook(candidates, files)
		if err != nil {
			return nil, 1, err
		}
		ok, err := e.matcher.ExcludeMatchesAny(included, "", hook.Exclude)
		if err != nil {
			return nil, 1, err
		}
		if !ok {
			code = 1
			fmt.Fprintf(&out, "The exclude pattern %q for %s does not match any files\n", hook.Exclude, hook.ID)
		}
	}
	return []byte(out.String()), code, nil
}
