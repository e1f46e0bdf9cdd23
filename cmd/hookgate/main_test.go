package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookgate/internal/commands"
)

func runMain(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, commands.Streams{In: strings.NewReader(""), Out: &out, Err: &errOut})
	return code, out.String(), errOut.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runMain(t, "--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, version+"\n", out)
}

func TestRun_Help(t *testing.T) {
	code, out, _ := runMain(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Available commands:")
	assert.Contains(t, out, "verify-revs")
	assert.NotContains(t, out, "hook-impl")
}

func TestRun_CommandHelp(t *testing.T) {
	code, out, _ := runMain(t, "run", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "--all-files")
}

func TestRun_UnknownCommand(t *testing.T) {
	code, out, errOut := runMain(t, "autoupdate")
	assert.NotEqual(t, 0, code)
	assert.Contains(t, out+errOut, "Available commands:")
}

func TestRun_ValidateConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repos:\n  - repo: meta\n    hooks:\n      - id: identity\n"), 0o600))

	code, out, _ := runMain(t, "validate-config", "--color=never", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, path+": valid")
}
