package execution

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blairham/hookgate/pkg/regex"
)

// PygrepOptions are the flags a pygrep hook accepts in args.
type PygrepOptions struct {
	IgnoreCase bool
	Multiline  bool
	Negate     bool
}

// ParsePygrepArgs reads pygrep flags.
func ParsePygrepArgs(args []string) (PygrepOptions, error) {
	var opts PygrepOptions
	for _, arg := range args {
		switch arg {
		case "-i", "--ignore-case":
			opts.IgnoreCase = true
		case "--multiline":
			opts.Multiline = true
		case "--negate":
			opts.Negate = true
		default:
			return opts, fmt.Errorf("pygrep: unrecognized argument %q", arg)
		}
	}
	return opts, nil
}

// Pygrep searches files for pattern without spawning a process. A file
// fails when the pattern matches, or when it does not with --negate. Lines
// are reported as filename:line:content.
func Pygrep(ctx context.Context, pattern string, args, files []string, root string) ([]byte, int, error) {
	opts, err := ParsePygrepArgs(args)
	if err != nil {
		return nil, 1, err
	}

	var p *regex.Pattern
	if opts.Multiline {
		p, err = regex.CompileMultiline(pattern, opts.IgnoreCase)
	} else if opts.IgnoreCase {
		p, err = regex.CompileIgnoreCase(pattern)
	} else {
		p, err = regex.Compile(pattern)
	}
	if err != nil {
		return nil, 1, err
	}

	var out bytes.Buffer
	code := 0
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return out.Bytes(), 1, err
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			return out.Bytes(), 1, fmt.Errorf("pygrep: %w", err)
		}

		var failed bool
		if opts.Multiline {
			failed, err = grepWhole(&out, p, name, string(data), opts.Negate)
		} else {
			failed, err = grepLines(&out, p, name, string(data), opts.Negate)
		}
		if err != nil {
			return out.Bytes(), 1, err
		}
		if failed {
			code = 1
		}
	}
	return out.Bytes(), code, nil
}

func grepLines(out *bytes.Buffer, p *regex.Pattern, name, contents string, negate bool) (bool, error) {
	matched := false
	lines := strings.SplitAfter(contents, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		ok, err := p.Search(line)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		matched = true
		if negate {
			break
		}
		fmt.Fprintf(out, "%s:%d:%s\n", name, i+1, strings.TrimRight(line, "\r\n"))
	}
	if negate && !matched {
		fmt.Fprintln(out, name)
		return true, nil
	}
	return matched && !negate, nil
}

func grepWhole(out *bytes.Buffer, p *regex.Pattern, name, contents string, negate bool) (bool, error) {
	m, ok, err := p.Find(contents)
	if err != nil {
		return false, err
	}
	if negate {
		if !ok {
			fmt.Fprintln(out, name)
		}
		return !ok, nil
	}
	if !ok {
		return false, nil
	}

	// regexp2 indexes runes
	runes := []rune(contents)
	lineNo := strings.Count(string(runes[:m.Index]), "\n")
	lines := strings.Split(contents, "\n")
	matched := strings.Split(m.Text, "\n")
	matched[0] = lines[lineNo]

	fmt.Fprintf(out, "%s:%d:%s\n", name, lineNo+1, strings.Join(matched, "\n"))
	return true, nil
}
