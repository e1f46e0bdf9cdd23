package commands

import (
	"io"

	"github.com/fatih/color"

	"github.com/blairham/hookgate/pkg/hook/formatting"
)

// palette colours the validation and verification reports.
type palette struct {
	ok   *color.Color
	bad  *color.Color
	warn *color.Color
	dim  *color.Color
}

func newPalette(w io.Writer, mode string) palette {
	p := palette{
		ok:   color.New(color.FgGreen),
		bad:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow),
		dim:  color.New(color.Faint),
	}
	enabled := formatting.UseColor(w, mode)
	for _, c := range []*color.Color{p.ok, p.bad, p.warn, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
