package execution

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pygrepFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"esptool/cmds.py":  "import sys\n# TODO: handle stub\nprint(sys.argv)\n",
		"espefuse.py":      "import espefuse\nespefuse._main()",
		"docs/en/index.rst": "Esptool\n=======\n\n.. note::\n   todo later\n",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestPygrep(t *testing.T) {
	root := pygrepFixture(t)
	files := []string{"esptool/cmds.py", "espefuse.py", "docs/en/index.rst"}
	ctx := context.Background()

	tests := []struct {
		name     string
		pattern  string
		args     []string
		wantOut  string
		wantCode int
	}{
		{
			name:     "line match",
			pattern:  `TODO`,
			wantOut:  "esptool/cmds.py:2:# TODO: handle stub\n",
			wantCode: 1,
		},
		{
			name:     "ignore case",
			pattern:  `todo`,
			args:     []string{"--ignore-case"},
			wantOut:  "esptool/cmds.py:2:# TODO: handle stub\ndocs/en/index.rst:5:   todo later\n",
			wantCode: 1,
		},
		{
			name:     "last line without newline",
			pattern:  `_main\(\)`,
			wantOut:  "espefuse.py:2:espefuse._main()\n",
			wantCode: 1,
		},
		{
			name:     "no match",
			pattern:  `breakpoint\(\)`,
			wantOut:  "",
			wantCode: 0,
		},
		{
			name:     "negate reports files without a match",
			pattern:  `^import `,
			args:     []string{"--negate"},
			wantOut:  "docs/en/index.rst\n",
			wantCode: 1,
		},
		{
			name:     "multiline",
			pattern:  `import sys\n# TODO`,
			args:     []string{"--multiline"},
			wantOut:  "esptool/cmds.py:1:import sys\n# TODO\n",
			wantCode: 1,
		},
		{
			name:     "multiline negate",
			pattern:  `=+\n\n\.\. note`,
			args:     []string{"--multiline", "--negate"},
			wantOut:  "esptool/cmds.py\nespefuse.py\n",
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, code, err := Pygrep(ctx, tt.pattern, tt.args, files, root)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, string(out))
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestPygrep_CRLF(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "flasher.py"), []byte("import sys\r\n# TODO: erase\r\n"), 0o644))

	out, code, err := Pygrep(context.Background(), `TODO`, nil, []string{"flasher.py"}, root)
	require.NoError(t, err)
	assert.Equal(t, "flasher.py:2:# TODO: erase\n", string(out))
	assert.Equal(t, 1, code)
}

func TestPygrep_Errors(t *testing.T) {
	root := pygrepFixture(t)
	ctx := context.Background()

	_, _, err := Pygrep(ctx, `x`, []string{"--bogus"}, nil, root)
	assert.ErrorContains(t, err, `unrecognized argument "--bogus"`)

	_, _, err = Pygrep(ctx, `(`, nil, nil, root)
	assert.Error(t, err)

	_, _, err = Pygrep(ctx, `x`, nil, []string{"missing.py"}, root)
	assert.ErrorContains(t, err, "pygrep")
}

func TestParsePygrepArgs(t *testing.T) {
	opts, err := ParsePygrepArgs([]string{"-i", "--multiline", "--negate"})
	require.NoError(t, err)
	assert.Equal(t, PygrepOptions{IgnoreCase: true, Multiline: true, Negate: true}, opts)
}
