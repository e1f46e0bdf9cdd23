package commands

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookgate/pkg/config"
)

func onPath(names ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range names {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestBuilder_Command(t *testing.T) {
	b := NewBuilder("/work/esptool").WithLookPath(onPath("ruff", "mypy"))

	tests := []struct {
		name     string
		hook     config.Hook
		repoPath string
		want     []string
	}{
		{
			name: "system",
			hook: config.Hook{ID: "pylint", Entry: "pylint --rcfile=.pylintrc", Language: "system", Args: []string{"-j", "2"}},
			want: []string{"pylint", "--rcfile=.pylintrc", "-j", "2"},
		},
		{
			name: "quoted entry",
			hook: config.Hook{ID: "echo", Entry: `sh -c 'echo "$@"' --`, Language: "system"},
			want: []string{"sh", "-c", `echo "$@"`, "--"},
		},
		{
			name:     "script relative to repo",
			hook:     config.Hook{ID: "check-stub", Entry: "ci/check_stub.sh --strict", Language: "script"},
			repoPath: "/work/esptool",
			want:     []string{filepath.Join("/work/esptool", "ci", "check_stub.sh"), "--strict"},
		},
		{
			name: "python entry found on PATH",
			hook: config.Hook{ID: "ruff", Entry: "ruff check --force-exclude", Language: "python", Args: []string{"--fix", "--exit-non-zero-on-fix"}},
			want: []string{"ruff", "check", "--force-exclude", "--fix", "--exit-non-zero-on-fix"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Command(tt.hook, tt.repoPath)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuilder_Command_Errors(t *testing.T) {
	b := NewBuilder("/work").WithLookPath(onPath())

	_, err := b.Command(config.Hook{ID: "codespell", Entry: "codespell", Language: "python"}, "")
	assert.True(t, errors.Is(err, ErrLanguageUnavailable))
	assert.Contains(t, err.Error(), `"codespell" not found on PATH`)

	_, err = b.Command(config.Hook{ID: "s", Entry: "run.sh", Language: "script"}, "")
	assert.ErrorIs(t, err, ErrRemoteScriptNotFound)

	_, err = b.Command(config.Hook{ID: "e", Entry: "  ", Language: "system"}, "")
	assert.ErrorIs(t, err, ErrEmptyEntry)

	_, err = b.Command(config.Hook{ID: "q", Entry: `echo "unterminated`, Language: "system"}, "")
	assert.ErrorContains(t, err, "invalid entry")
}

func TestBuilder_DoesNotAliasArgs(t *testing.T) {
	b := NewBuilder("/work")
	hook := config.Hook{ID: "x", Entry: "true", Language: "system", Args: []string{"a"}}

	first, err := b.Command(hook, "")
	require.NoError(t, err)
	first[0] = "changed"

	assert.Equal(t, []string{"a"}, hook.Args)
	second, err := b.Command(hook, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"true", "a"}, second)
}
