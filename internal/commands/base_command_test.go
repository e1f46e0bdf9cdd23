package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBase() (*BaseCommand, output) {
	s, o := newStreams("")
	return &BaseCommand{
		Streams:     s,
		Name:        "demo",
		Description: "Demo command.",
		Examples:    []Example{{Command: "hookgate demo -v", Description: "Verbose"}},
		Notes:       []string{"A note."},
	}, o
}

func TestParseArgsWithHelp(t *testing.T) {
	bc, o := testBase()
	var opts CommonOptions
	rest, err := bc.ParseArgsWithHelp(&opts, []string{"-v", "-c", "custom.yaml", "extra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"extra"}, rest)
	assert.True(t, opts.Verbose)
	assert.Equal(t, "custom.yaml", opts.Config)
	assert.Equal(t, "auto", opts.Color)
	assert.Empty(t, o.err.String())
}

func TestParseArgsWithHelp_Help(t *testing.T) {
	bc, o := testBase()
	_, err := bc.ParseArgsWithHelp(&CommonOptions{}, []string{"--help"})
	require.ErrorIs(t, err, errHelpShown)
	assert.Equal(t, ExitOK, parseExit(err))
	assert.Contains(t, o.out.String(), "hookgate demo [OPTIONS]")
}

func TestParseArgsWithHelp_Invalid(t *testing.T) {
	bc, o := testBase()
	_, err := bc.ParseArgsWithHelp(&CommonOptions{}, []string{"--color=sometimes"})
	require.Error(t, err)
	assert.Equal(t, ExitError, parseExit(err))
	assert.Contains(t, o.err.String(), "Error parsing arguments")
}

func TestParseArgsWithHelp_ColorEnv(t *testing.T) {
	t.Setenv("PRE_COMMIT_COLOR", "never")
	bc, _ := testBase()
	var opts CommonOptions
	_, err := bc.ParseArgsWithHelp(&opts, nil)
	require.NoError(t, err)
	assert.Equal(t, "never", opts.Color)
}

func TestGenerateHelp(t *testing.T) {
	bc, _ := testBase()
	help := bc.GenerateHelp(&CommonOptions{})
	for _, want := range []string{"Demo command.", "--config", "--verbose", "hookgate demo -v", "A note."} {
		assert.Contains(t, help, want)
	}
}

func TestHookTypeOptions(t *testing.T) {
	var hto HookTypeOptions
	assert.Equal(t, []string{"pre-commit"}, hto.GetHookTypes([]string{"pre-commit"}))
	require.NoError(t, hto.ValidateHookTypes())

	hto.HookTypes = []string{"commit-msg", "pre-push"}
	assert.Equal(t, []string{"commit-msg", "pre-push"}, hto.GetHookTypes([]string{"pre-commit"}))
	require.NoError(t, hto.ValidateHookTypes())

	hto.HookTypes = []string{"pre-lunch"}
	assert.EqualError(t, hto.ValidateHookTypes(), "unsupported hook type: pre-lunch")
}

func TestConfigFileExists(t *testing.T) {
	r := newTestRepo(t)
	r.write(".pre-commit-config.yaml", "repos: []\n")
	bc, _ := testBase()
	require.NoError(t, bc.ConfigFileExists(".pre-commit-config.yaml"))
	require.Error(t, bc.ConfigFileExists("missing.yaml"))
}

func TestRequireGitRepository(t *testing.T) {
	t.Chdir(t.TempDir())
	bc, _ := testBase()
	_, err := bc.RequireGitRepository()
	require.ErrorContains(t, err, "not in a git repository")
}
