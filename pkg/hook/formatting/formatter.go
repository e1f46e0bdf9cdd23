// Package formatting handles result formatting and output display
package formatting

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/blairham/hookgate/pkg/hook/execution"
)

// Color modes accepted by --color and $PRE_COMMIT_COLOR.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultColumns is the line width used when the output is not a terminal.
const DefaultColumns = 79

const (
	statusPassed  = "Passed"
	statusFailed  = "Failed"
	statusSkipped = "Skipped"
)

// Formatter handles formatting and displaying hook execution results
type Formatter struct {
	w       io.Writer
	verbose bool
	columns int

	passed  lipgloss.Style
	failed  lipgloss.Style
	skipped lipgloss.Style
	detail  lipgloss.Style
}

// NewFormatter creates a formatter writing to w.
func NewFormatter(w io.Writer, colorMode string, verbose bool) *Formatter {
	re := lipgloss.NewRenderer(w)
	if !UseColor(w, colorMode) {
		re.SetColorProfile(termenv.Ascii)
	} else if colorMode == ColorAlways {
		re.SetColorProfile(termenv.ANSI)
	}

	return &Formatter{
		w:       w,
		verbose: verbose,
		columns: TerminalColumns(w),
		passed:  re.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0")),
		failed:  re.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15")),
		skipped: re.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0")),
		detail:  re.NewStyle().Faint(true),
	}
}

// UseColor decides whether output to w is coloured.
func UseColor(w io.Writer, mode string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalColumns returns the usable line width for w, at most
// DefaultColumns.
func TerminalColumns(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return DefaultColumns
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultColumns
	}
	return min(width, DefaultColumns)
}

// FitNames widens the lines so the longest name still gets dots before
// "(no files to check)Skipped".
func (f *Formatter) FitNames(names []string) {
	for _, name := range names {
		f.columns = max(f.columns, len(name)+3+len(execution.ReasonNoFiles)+len(statusSkipped))
	}
}

// Print writes one hook result.
func (f *Formatter) Print(result execution.Result) {
	name := result.Hook.DisplayName()
	verbose := f.verbose || result.Hook.IsVerbose()

	switch {
	case result.Skipped:
		fmt.Fprintln(f.w, f.line(name, result.SkipReason, statusSkipped, f.skipped))
		if verbose {
			fmt.Fprintln(f.w, f.detail.Render("- hook id: "+result.Hook.ID))
		}
		return
	case result.Success:
		fmt.Fprintln(f.w, f.line(name, "", statusPassed, f.passed))
		if !verbose {
			return
		}
	default:
		fmt.Fprintln(f.w, f.line(name, "", statusFailed, f.failed))
	}

	f.printDetails(result, verbose)

	if output := strings.TrimRight(result.Output, "\n\r\t "); output != "" {
		fmt.Fprintf(f.w, "\n%s\n\n", output)
	} else if result.Error != "" || result.Modified {
		fmt.Fprintln(f.w)
	}
}

// line renders "name.....reasonStatus" with the status badge styled.
func (f *Formatter) line(name, reason, status string, style lipgloss.Style) string {
	dots := max(f.columns-len(name)-len(reason)-len(status), 1)
	return name + strings.Repeat(".", dots) + reason + style.Render(status)
}

func (f *Formatter) printDetails(result execution.Result, verbose bool) {
	lines := []string{"- hook id: " + result.Hook.ID}
	if verbose {
		d := "- duration: " + FormatDuration(result.Duration)
		if result.Timeout {
			d += " (timeout)"
		}
		lines = append(lines, d)
	}
	if result.ExitCode != 0 {
		lines = append(lines, fmt.Sprintf("- exit code: %d", result.ExitCode))
	}
	if result.Modified {
		lines = append(lines, "- files were modified by this hook")
	}
	if result.Error != "" {
		lines = append(lines, "- error: "+result.Error)
	}
	for _, l := range lines {
		fmt.Fprintln(f.w, f.detail.Render(l))
	}
}

// FormatDuration renders a hook duration the way the results list shows it.
func FormatDuration(duration time.Duration) string {
	seconds := duration.Seconds()

	switch {
	case seconds < 0.005:
		return "0s"
	case seconds < 1.0:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds < 60.0:
		return fmt.Sprintf("%.1fs", seconds)
	default:
		minutes := int(seconds) / 60
		remainingSeconds := int(seconds) % 60
		return fmt.Sprintf("%dm%ds", minutes, remainingSeconds)
	}
}
