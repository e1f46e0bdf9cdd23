package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `\.py$`, want: `\.py$`},
		{name: "named group", in: `(?P<ext>py|pyi)$`, want: `(?<ext>py|pyi)$`},
		{name: "named backref", in: `(?P<q>['"]).*(?P=q)`, want: `(?<q>['"]).*\k<q>`},
		{name: "end of string", in: `^docs/.*\Z`, want: `^docs/.*\z`},
		{name: "escaped Z in class untouched", in: `[\Z]`, want: `[\Z]`},
		{name: "bracket literal", in: `[]P<]`, want: `[]P<]`},
		{name: "group syntax inside class", in: `[(?P<]`, want: `[(?P<]`},
		{name: "unterminated backref", in: `(?P=oops`, want: `(?P=oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.in))
		})
	}
}

func TestSearchSemantics(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{`\.py$`, "esptool/cmds.py", true},
		{`\.py$`, "esptool/cmds.pyc", false},
		// re.search matches anywhere, not only at the start.
		{`espefuse.py|espsecure.py|esptool.py|docs/`, "docs/en/index.rst", true},
		{`espefuse.py|espsecure.py|esptool.py|docs/`, "espefuse/__init__.py", false},
		{`espefuse.py|espsecure.py|esptool.py|docs/`, "espefuse.py", true},
		{`^(docs/en|docs/zh_CN)/.*\.(rst|inc)$`, "docs/zh_CN/esptool/index.rst", true},
		{`^(docs/en|docs/zh_CN)/.*\.(rst|inc)$`, "docs/conf_common.py", false},
		// Lookahead is Python syntax that Go's regexp rejects.
		{`^(?!test/).*\.py$`, "esptool/loader.py", true},
		{`^(?!test/).*\.py$`, "test/test_esptool.py", false},
		{`(?P<stem>\w+)\.(?P=stem)`, "abc.abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			require.NoError(t, err)

			got, err := p.Search(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, p.MatchString(tt.input))
		})
	}
}

func TestCompileInvalid(t *testing.T) {
	_, err := Compile(`[unclosed`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[unclosed")

	assert.Error(t, Valid(`(`))
	assert.NoError(t, Valid(`^$`))
}

func TestCompileCaches(t *testing.T) {
	a, err := Compile(`^setup\.cfg$`)
	require.NoError(t, err)
	b, err := Compile(`^setup\.cfg$`)
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := CompileIgnoreCase(`^setup\.cfg$`)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.True(t, c.MatchString("SETUP.CFG"))
	assert.False(t, a.MatchString("SETUP.CFG"))
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile(`(`) })
	assert.Equal(t, `\.rst$`, MustCompile(`\.rst$`).String())
}

func TestFind(t *testing.T) {
	p := MustCompile(`é+`)
	m, ok, err := p.Find("café crème")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, m.Index)
	assert.Equal(t, "é", m.Text)

	_, ok, err = p.Find("cafe")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompileMultiline(t *testing.T) {
	p, err := CompileMultiline(`^import pdb.*\nbreakpoint`, false)
	require.NoError(t, err)
	ok, err := p.Search("x = 1\nimport pdb; \nbreakpoint()\n")
	require.NoError(t, err)
	assert.True(t, ok)
}
