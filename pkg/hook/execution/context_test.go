package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blairham/hookgate/pkg/config"
)

func TestParseSkip(t *testing.T) {
	assert.Equal(t, []string{"mypy", "codespell"}, ParseSkip("mypy, codespell,"))
	assert.Nil(t, ParseSkip(""))
	assert.Nil(t, ParseSkip(" , "))
}

func TestContext_Selected(t *testing.T) {
	ruff := config.Hook{ID: "ruff", Alias: "lint"}

	assert.True(t, (&Context{}).Selected(ruff))
	assert.True(t, (&Context{HookIDs: []string{"ruff"}}).Selected(ruff))
	assert.True(t, (&Context{HookIDs: []string{"lint"}}).Selected(ruff))
	assert.False(t, (&Context{HookIDs: []string{"mypy"}}).Selected(ruff))
	assert.False(t, (&Context{HookIDs: []string{""}}).Selected(config.Hook{ID: "x"}))
}

func TestContext_Skipped(t *testing.T) {
	c := &Context{Skip: ParseSkip("mypy,lint")}
	assert.True(t, c.Skipped(config.Hook{ID: "mypy"}))
	assert.True(t, c.Skipped(config.Hook{ID: "ruff", Alias: "lint"}))
	assert.False(t, c.Skipped(config.Hook{ID: "codespell"}))
}

func TestContext_Stage(t *testing.T) {
	assert.Equal(t, "pre-commit", (&Context{}).Stage())
	assert.Equal(t, "commit-msg", (&Context{HookStage: "commit-msg"}).Stage())
}
