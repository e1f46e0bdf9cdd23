package execution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/hook/commands"
	"github.com/blairham/hookgate/pkg/hook/matching"
	"github.com/blairham/hookgate/pkg/identify"
)

var trackedFiles = []string{
	".pre-commit-config.yaml",
	"esptool.py",
	"esptool/cmds.py",
	"docs/en/index.rst",
	"README.md",
}

func metaExecutor(cfg *config.Config, hooks []RunItem) *Executor {
	ectx := &Context{
		Config:    cfg,
		RepoRoot:  "/repo",
		Hooks:     hooks,
		ListFiles: func() ([]string, error) { return trackedFiles, nil },
	}
	m := matching.NewMatcher("/repo").WithTagFunc(func(path string) (identify.Tags, error) {
		tags := identify.FromFilename(path)
		tags.Add(identify.File, identify.Text)
		return tags, nil
	})
	return NewExecutor(ectx, commands.NewBuilder("/repo"), m)
}

func remoteItem(hook config.Hook) RunItem {
	return RunItem{Repo: config.Repo{Repo: "https://example.com/hooks", Rev: "v1"}, Hook: hook}
}

func TestMetaHook(t *testing.T) {
	for _, id := range config.MetaHookIDs {
		hook, ok := MetaHook(id)
		require.True(t, ok, id)
		assert.Equal(t, id, hook.ID)
		assert.Equal(t, commands.LanguageMeta, hook.Language)
	}
	_, ok := MetaHook("nope")
	assert.False(t, ok)

	hook, _ := MetaHook(MetaCheckHooksApply)
	m := matching.NewMatcher("/")
	got, err := m.Filter(trackedFiles, hook.Files, "")
	require.NoError(t, err)
	assert.Equal(t, []string{".pre-commit-config.yaml"}, got)
}

func TestMeta_Identity(t *testing.T) {
	e := metaExecutor(&config.Config{}, nil)
	hook, _ := MetaHook(MetaIdentity)

	result := e.Run(context.Background(), RunItem{Repo: config.Repo{Repo: config.MetaRepo}, Hook: hook}, []string{"a.py", "b.py"})
	assert.True(t, result.Success)
	assert.Equal(t, "a.py\nb.py\n", result.Output)
}

func TestMeta_CheckHooksApply(t *testing.T) {
	hooks := []RunItem{
		remoteItem(config.Hook{ID: "ruff", Types: []string{"python"}}),
		remoteItem(config.Hook{ID: "clang-format", Types: []string{"c"}}),
		remoteItem(config.Hook{ID: "always", Types: []string{"c"}, AlwaysRun: config.Bool(true)}),
		remoteItem(config.Hook{ID: "forbid", Types: []string{"c"}, Language: commands.LanguageFail}),
	}
	e := metaExecutor(&config.Config{}, hooks)
	hook, _ := MetaHook(MetaCheckHooksApply)

	result := e.Run(context.Background(), RunItem{Repo: config.Repo{Repo: config.MetaRepo}, Hook: hook}, nil)
	assert.False(t, result.Success)
	assert.Equal(t, "clang-format does not apply to this repository\n", result.Output)
}

func TestMeta_CheckHooksApply_TopLevelExclude(t *testing.T) {
	hooks := []RunItem{remoteItem(config.Hook{ID: "sphinx-lint", Types: []string{"rst"}})}
	e := metaExecutor(&config.Config{Exclude: `^docs/`}, hooks)
	hook, _ := MetaHook(MetaCheckHooksApply)

	result := e.Run(context.Background(), RunItem{Repo: config.Repo{Repo: config.MetaRepo}, Hook: hook}, nil)
	assert.Equal(t, "sphinx-lint does not apply to this repository\n", result.Output)
}

func TestMeta_CheckUselessExcludes(t *testing.T) {
	hooks := []RunItem{
		remoteItem(config.Hook{ID: "mypy", Types: []string{"python"}, Exclude: `espefuse.py|espsecure.py|esptool.py|docs/`}),
		remoteItem(config.Hook{ID: "codespell", Exclude: `^vendor/`}),
		// docs/ files are not python, so this exclude never applies
		remoteItem(config.Hook{ID: "ruff", Types: []string{"python"}, Exclude: `^docs/`}),
	}
	e := metaExecutor(&config.Config{Exclude: `^third_party/`}, hooks)
	hook, _ := MetaHook(MetaCheckUselessExcludes)

	result := e.Run(context.Background(), RunItem{Repo: config.Repo{Repo: config.MetaRepo}, Hook: hook}, nil)
	assert.False(t, result.Success)
	assert.Equal(t,
		"The global exclude pattern \"^third_party/\" does not match any files\n"+
			"The exclude pattern \"^vendor/\" for codespell does not match any files\n"+
			"The exclude pattern \"^docs/\" for ruff does not match any files\n",
		result.Output)
}

func TestMeta_CheckUselessExcludes_Clean(t *testing.T) {
	hooks := []RunItem{
		remoteItem(config.Hook{ID: "mypy", Types: []string{"python"}, Exclude: `esptool.py`}),
	}
	e := metaExecutor(&config.Config{}, hooks)
	hook, _ := MetaHook(MetaCheckUselessExcludes)

	result := e.Run(context.Background(), RunItem{Repo: config.Repo{Repo: config.MetaRepo}, Hook: hook}, nil)
	assert.True(t, result.Success)
	assert.Empty(t, result.Output)
}

func TestMeta_CheckUselessExcludes_GlobalScope(t *testing.T) {
	hooks := []RunItem{
		// overlaps the global exclude; still matches a file in scope
		remoteItem(config.Hook{ID: "mypy", Types: []string{"python"}, Exclude: `^esptool/`}),
	}
	cfg := &config.Config{Files: `^esptool`, Exclude: `^esptool/`}
	e := metaExecutor(cfg, hooks)
	hook, _ := MetaHook(MetaCheckUselessExcludes)

	result := e.Run(context.Background(), RunItem{Repo: config.Repo{Repo: config.MetaRepo}, Hook: hook}, nil)
	assert.True(t, result.Success)
	assert.Empty(t, result.Output)

	// docs/ is outside the global files pattern
	cfg = &config.Config{Files: `^esptool`, Exclude: `^docs/`}
	e = metaExecutor(cfg, nil)
	result = e.Run(context.Background(), RunItem{Repo: config.Repo{Repo: config.MetaRepo}, Hook: hook}, nil)
	assert.False(t, result.Success)
	assert.Equal(t, "The global exclude pattern \"^docs/\" does not match any files\n", result.Output)
}
