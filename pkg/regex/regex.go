// Package regex compiles and matches hook file patterns with Python re
// semantics.
//
// Configuration patterns are written for Python's re module, which supports
// lookarounds and backreferences that Go's regexp package rejects. Patterns
// are translated to the closest regexp2 syntax and cached process-wide.
package regex

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/go4org/hashtriemap"
)

// MatchTimeout bounds a single match so a pathological pattern cannot hang
// a commit.
const MatchTimeout = 2 * time.Second

// ErrTimeout is returned when a match exceeds MatchTimeout.
var ErrTimeout = errors.New("regex match timed out")

// Pattern is a compiled pattern.
type Pattern struct {
	re     *regexp2.Regexp
	source string
}

type cacheKey struct {
	source string
	opts   regexp2.RegexOptions
}

var cache hashtriemap.HashTrieMap[cacheKey, *Pattern]

// Compile compiles a Python-style pattern. Results are cached.
func Compile(pattern string) (*Pattern, error) {
	return compile(pattern, regexp2.None)
}

// CompileIgnoreCase is Compile with re.IGNORECASE.
func CompileIgnoreCase(pattern string) (*Pattern, error) {
	return compile(pattern, regexp2.IgnoreCase)
}

// CompileMultiline compiles a pattern whose . also matches newlines and whose
// anchors apply per line, as pygrep --multiline does.
func CompileMultiline(pattern string, ignoreCase bool) (*Pattern, error) {
	opts := regexp2.RegexOptions(regexp2.Multiline | regexp2.Singleline)
	if ignoreCase {
		opts |= regexp2.IgnoreCase
	}
	return compile(pattern, opts)
}

func compile(pattern string, opts regexp2.RegexOptions) (*Pattern, error) {
	key := cacheKey{source: pattern, opts: opts}
	if p, ok := cache.Load(key); ok {
		return p, nil
	}

	re, err := regexp2.Compile(Translate(pattern), opts)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	re.MatchTimeout = MatchTimeout

	p, _ := cache.LoadOrStore(key, &Pattern{re: re, source: pattern})
	return p, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Valid reports the compile error for pattern, if any.
func Valid(pattern string) error {
	_, err := Compile(pattern)
	return err
}

// String returns the pattern as written.
func (p *Pattern) String() string { return p.source }

// Search reports whether the pattern matches anywhere in s, like re.search.
func (p *Pattern) Search(s string) (bool, error) {
	ok, err := p.re.MatchString(s)
	if err != nil {
		return false, wrapErr(p.source, err)
	}
	return ok, nil
}

// MatchString is Search that treats a timeout as no match.
func (p *Pattern) MatchString(s string) bool {
	ok, err := p.Search(s)
	return err == nil && ok
}

// Match is a single match of a pattern.
type Match struct {
	Index  int
	Length int
	Text   string
}

// Find returns the first match in s. Index and Length count runes.
func (p *Pattern) Find(s string) (Match, bool, error) {
	m, err := p.re.FindStringMatch(s)
	if err != nil {
		return Match{}, false, wrapErr(p.source, err)
	}
	if m == nil {
		return Match{}, false, nil
	}
	return Match{Index: m.Index, Length: m.Length, Text: m.String()}, true, nil
}

func wrapErr(source string, err error) error {
	if strings.Contains(err.Error(), "match timeout") {
		return fmt.Errorf("%w: %q", ErrTimeout, source)
	}
	return fmt.Errorf("matching %q: %w", source, err)
}

// Translate rewrites Python-only constructs to their regexp2 equivalents:
// named groups (?P<name>...), named backreferences (?P=name) and the \Z
// end-of-string anchor.
func Translate(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))

	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			next := pattern[i+1]
			if next == 'Z' && !inClass {
				b.WriteString(`\z`)
			} else {
				b.WriteByte(c)
				b.WriteByte(next)
			}
			i++
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
			// A leading ] or ^] is literal inside a class.
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				b.WriteByte(']')
				i++
			}
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)
		case !inClass && strings.HasPrefix(pattern[i:], "(?P<"):
			b.WriteString("(?<")
			i += len("(?P<") - 1
		case !inClass && strings.HasPrefix(pattern[i:], "(?P="):
			end := strings.IndexByte(pattern[i:], ')')
			if end < 0 {
				b.WriteString(pattern[i:])
				return b.String()
			}
			name := pattern[i+len("(?P=") : i+end]
			b.WriteString(`\k<` + name + `>`)
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
