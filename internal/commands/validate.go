package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blairham/hookgate/pkg/config"
	"github.com/blairham/hookgate/pkg/manifest"
	"github.com/blairham/hookgate/pkg/schema"
)

// docCheck validates one document, returning warnings and problems.
type docCheck func(data []byte) (warnings, problems []string)

// validateFiles reports on every file and returns ExitFailure if any is
// invalid.
func (bc *BaseCommand) validateFiles(p palette, files []string, check docCheck) int {
	code := ExitOK
	for _, file := range files {
		data, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			p.bad.Fprintf(bc.Out, "%s: ", file)
			fmt.Fprintln(bc.Out, err)
			code = ExitFailure
			continue
		}

		warnings, problems := check(data)
		for _, w := range warnings {
			p.warn.Fprintf(bc.Out, "%s: warning: ", file)
			fmt.Fprintln(bc.Out, w)
		}
		if len(problems) == 0 {
			fmt.Fprintf(bc.Out, "%s: ", file)
			p.ok.Fprintln(bc.Out, "valid")
			continue
		}

		code = ExitFailure
		p.bad.Fprintf(bc.Out, "%s: invalid\n", file)
		for _, problem := range problems {
			fmt.Fprintf(bc.Out, "  - %s\n", problem)
		}
	}
	return code
}

// problemsOf splits aggregate errors into one line per problem.
func problemsOf(err error) []string {
	var schemaErr *schema.Error
	if errors.As(err, &schemaErr) {
		out := make([]string, len(schemaErr.Violations))
		for i, v := range schemaErr.Violations {
			out[i] = v.String()
		}
		return out
	}
	var verrs config.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]string, len(verrs))
		for i, e := range verrs {
			out[i] = e.Error()
		}
		return out
	}
	return []string{err.Error()}
}

func checkConfig(data []byte) ([]string, []string) {
	cfg, parseErr := config.Parse(data)
	if errors.Is(parseErr, config.ErrLegacyFormat) || errors.Is(parseErr, config.ErrEmptyConfig) {
		return nil, problemsOf(parseErr)
	}
	if err := schema.ValidateConfig(data); err != nil {
		return nil, problemsOf(err)
	}
	if parseErr != nil {
		return nil, problemsOf(parseErr)
	}
	if err := cfg.Validate(); err != nil {
		return cfg.Warnings, problemsOf(err)
	}
	return cfg.Warnings, nil
}

func checkManifest(data []byte) ([]string, []string) {
	if err := schema.ValidateManifest(data); err != nil {
		return nil, problemsOf(err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, problemsOf(err)
	}
	if err := m.Validate(); err != nil {
		return nil, problemsOf(err)
	}
	return nil, nil
}
