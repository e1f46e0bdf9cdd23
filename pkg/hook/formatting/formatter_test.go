package formatting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/hook/execution"
)

func newPlain(verbose bool) (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewFormatter(&buf, ColorNever, verbose), &buf
}

func TestFormatter_Passed(t *testing.T) {
	f, buf := newPlain(false)
	f.Print(execution.Result{
		Hook:    config.Hook{ID: "ruff", Name: "ruff"},
		Success: true,
		Output:  "All checks passed!\n",
	})

	want := "ruff" + strings.Repeat(".", DefaultColumns-len("ruff")-len("Passed")) + "Passed\n"
	assert.Equal(t, want, buf.String())
	assert.Len(t, strings.TrimSuffix(buf.String(), "\n"), DefaultColumns)
}

func TestFormatter_PassedVerbose(t *testing.T) {
	f, buf := newPlain(true)
	f.Print(execution.Result{
		Hook:     config.Hook{ID: "ruff"},
		Success:  true,
		Duration: 1500 * time.Millisecond,
		Output:   "All checks passed!\n",
	})

	lines := strings.Split(buf.String(), "\n")
	assert.True(t, strings.HasSuffix(lines[0], "Passed"))
	assert.Equal(t, "- hook id: ruff", lines[1])
	assert.Equal(t, "- duration: 1.5s", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "All checks passed!", lines[4])
}

func TestFormatter_Failed(t *testing.T) {
	f, buf := newPlain(false)
	f.Print(execution.Result{
		Hook:     config.Hook{ID: "mypy", Name: "mypy"},
		ExitCode: 1,
		Output:   "esptool/cmds.py:10: error: Incompatible types\n",
	})

	assert.Equal(t,
		"mypy"+strings.Repeat(".", DefaultColumns-len("mypy")-len("Failed"))+"Failed\n"+
			"- hook id: mypy\n"+
			"- exit code: 1\n"+
			"\n"+
			"esptool/cmds.py:10: error: Incompatible types\n"+
			"\n",
		buf.String())
}

func TestFormatter_FailedModifiedNoOutput(t *testing.T) {
	f, buf := newPlain(false)
	f.Print(execution.Result{
		Hook:     config.Hook{ID: "ruff-format"},
		Modified: true,
	})

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "- hook id: ruff-format", lines[1])
	assert.Equal(t, "- files were modified by this hook", lines[2])
	assert.Equal(t, "", lines[3])
}

func TestFormatter_Timeout(t *testing.T) {
	f, buf := newPlain(false)
	f.Print(execution.Result{
		Hook:     config.Hook{ID: "slow", Verbose: config.Bool(true)},
		Timeout:  true,
		ExitCode: 1,
		Error:    "Hook timed out after 1s",
		Duration: time.Second,
	})
	assert.Contains(t, buf.String(), "- duration: 1.0s (timeout)\n")
	assert.Contains(t, buf.String(), "- error: Hook timed out after 1s\n")
}

func TestFormatter_Skipped(t *testing.T) {
	f, buf := newPlain(false)
	f.Print(execution.Result{
		Hook:       config.Hook{ID: "sphinx-lint", Name: "Lint RST files in docs folder using Sphinx Lint"},
		Skipped:    true,
		SkipReason: execution.ReasonNoFiles,
	})

	line := strings.TrimSuffix(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(line, "Lint RST files in docs folder using Sphinx Lint..."))
	assert.True(t, strings.HasSuffix(line, "(no files to check)Skipped"))
	assert.Len(t, line, DefaultColumns)

	buf.Reset()
	f.Print(execution.Result{Hook: config.Hook{ID: "mypy"}, Skipped: true})
	assert.Equal(t, "mypy"+strings.Repeat(".", DefaultColumns-len("mypy")-len("Skipped"))+"Skipped\n", buf.String())
}

func TestFormatter_FitNames(t *testing.T) {
	f, buf := newPlain(false)
	long := strings.Repeat("n", 70)
	f.FitNames([]string{"short", long})

	f.Print(execution.Result{Hook: config.Hook{ID: "x", Name: long}, Skipped: true, SkipReason: execution.ReasonNoFiles})
	assert.Contains(t, buf.String(), long+"...(no files to check)Skipped")
}

func TestFormatter_AlwaysColor(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, ColorAlways, false)
	f.Print(execution.Result{Hook: config.Hook{ID: "ruff"}, Success: true})
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Passed")
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, UseColor(&buf, ColorAlways))
	assert.False(t, UseColor(&buf, ColorNever))
	assert.False(t, UseColor(&buf, ColorAuto))
}

func TestTerminalColumns(t *testing.T) {
	assert.Equal(t, DefaultColumns, TerminalColumns(&bytes.Buffer{}))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Millisecond, "0s"},
		{120 * time.Millisecond, "0.12s"},
		{2500 * time.Millisecond, "2.5s"},
		{95 * time.Second, "1m35s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}
