package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (r *testRepo) hookPath(hookType string) string {
	return filepath.Join(r.Root, ".git", "hooks", hookType)
}

func (r *testRepo) readHook(hookType string) string {
	r.t.Helper()
	data, err := os.ReadFile(r.hookPath(hookType))
	require.NoError(r.t, err)
	return string(data)
}

func (r *testRepo) writeHook(hookType, script string) {
	r.t.Helper()
	require.NoError(r.t, os.MkdirAll(filepath.Dir(r.hookPath(hookType)), 0o750))
	require.NoError(r.t, os.WriteFile(r.hookPath(hookType), []byte(script), 0o700)) // #nosec G306
}

func install(t *testing.T, args ...string) (int, output) {
	t.Helper()
	cmd, o := command(t, InstallCommandFactory, "")
	return cmd.Run(args), o
}

func TestInstallCommand(t *testing.T) {
	r := newTestRepo(t)

	code, o := install(t)

	require.Equal(t, ExitOK, code, o.err.String())
	assert.Contains(t, o.out.String(), "hookgate installed at ")
	assert.Contains(t, o.out.String(), filepath.Join(".git", "hooks", "pre-commit"))

	script := r.readHook("pre-commit")
	assert.Contains(t, script, "#!/bin/sh\n"+hookMarker+"\n")
	assert.Contains(t, script, "hook-impl --config=.pre-commit-config.yaml --hook-type=pre-commit")
	assert.Contains(t, script, `-- "$@"`)
	assert.NotContains(t, script, "--skip-on-missing-config")

	info, err := os.Stat(r.hookPath("pre-commit"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100)
}

func TestInstallCommand_DefaultInstallHookTypes(t *testing.T) {
	r := newTestRepo(t)
	r.write(".pre-commit-config.yaml", readFixture(t, "esptool.yaml"))

	code, _ := install(t)

	require.Equal(t, ExitOK, code)
	assert.FileExists(t, r.hookPath("pre-commit"))
	assert.FileExists(t, r.hookPath("commit-msg"))
}

func TestInstallCommand_HookTypes(t *testing.T) {
	r := newTestRepo(t)

	code, _ := install(t, "-t", "pre-push", "--allow-missing-config")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, r.readHook("pre-push"), "--hook-type=pre-push --skip-on-missing-config")
	assert.NoFileExists(t, r.hookPath("pre-commit"))

	code, o := install(t, "-t", "pre-lunch")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, o.err.String(), "unsupported hook type: pre-lunch")
}

func TestInstallCommand_Legacy(t *testing.T) {
	r := newTestRepo(t)
	r.writeHook("pre-commit", "#!/bin/sh\necho mine\n")

	code, o := install(t)

	require.Equal(t, ExitOK, code, o.err.String())
	assert.Contains(t, o.out.String(), "Running in migration mode with existing hooks at")
	assert.Equal(t, "#!/bin/sh\necho mine\n", readFile(t, r.hookPath("pre-commit")+legacySuffix))
	assert.Contains(t, r.readHook("pre-commit"), hookMarker)

	// reinstalling keeps the legacy hook and does not move our own script
	code, _ = install(t)
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "#!/bin/sh\necho mine\n", readFile(t, r.hookPath("pre-commit")+legacySuffix))

	code, o = install(t, "--overwrite")
	require.Equal(t, ExitOK, code)
	assert.NoFileExists(t, r.hookPath("pre-commit")+legacySuffix)
	assert.NotContains(t, o.out.String(), "migration mode")
}

func TestInstallCommand_NotARepository(t *testing.T) {
	t.Chdir(t.TempDir())
	code, o := install(t)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, o.err.String(), "not in a git repository")
}

func TestHookScript(t *testing.T) {
	script := hookScript("commit-msg", "/opt/my tools/hookgate", "ci/pre commit.yaml", true)

	assert.Contains(t, script, "INSTALL_HOOKGATE='/opt/my tools/hookgate'\n")
	assert.Contains(t, script,
		`exec "$INSTALL_HOOKGATE" hook-impl '--config=ci/pre commit.yaml' --hook-type=commit-msg --skip-on-missing-config`)
	assert.Contains(t, script, `--hook-dir="$(cd "$(dirname "$0")" && pwd)" -- "$@"`)
	assert.Contains(t, script, "elif command -v hookgate > /dev/null; then")
	assert.True(t, isManagedHook([]byte(script)))
	assert.False(t, isManagedHook([]byte("#!/bin/sh\nexit 0\n")))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
