// Package identify assigns type tags to files for the types, types_or and
// exclude_types hook filters.
package identify

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Basic tags
const (
	Directory     = "directory"
	File          = "file"
	Symlink       = "symlink"
	Socket        = "socket"
	Executable    = "executable"
	NonExecutable = "non-executable"
	Text          = "text"
	Binary        = "binary"
)

// sniffSize is how much of a file is read to decide text versus binary.
const sniffSize = 1024

// Tags is a set of type tags.
type Tags map[string]struct{}

// NewTags builds a set from tags.
func NewTags(tags ...string) Tags {
	t := make(Tags, len(tags))
	t.Add(tags...)
	return t
}

// Add inserts tags.
func (t Tags) Add(tags ...string) {
	for _, tag := range tags {
		t[tag] = struct{}{}
	}
}

// Has reports whether tag is present.
func (t Tags) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// HasAll reports whether every tag is present.
func (t Tags) HasAll(tags []string) bool {
	for _, tag := range tags {
		if !t.Has(tag) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one tag is present.
func (t Tags) HasAny(tags []string) bool {
	for _, tag := range tags {
		if t.Has(tag) {
			return true
		}
	}
	return false
}

var extensions = map[string][]string{
	"bash":     {Text, "shell", "bash"},
	"bat":      {Text, "batch"},
	"bin":      {Binary},
	"c":        {Text, "c"},
	"cfg":      {Text},
	"cpp":      {Text, "c++"},
	"css":      {Text, "css"},
	"csv":      {Text, "csv"},
	"go":       {Text, "go"},
	"gz":       {Binary, "gzip"},
	"h":        {Text, "header", "c", "c++"},
	"html":     {Text, "html"},
	"inc":      {Text, "inc"},
	"ini":      {Text, "ini"},
	"jpeg":     {Binary, "image", "jpeg"},
	"jpg":      {Binary, "image", "jpeg"},
	"js":       {Text, "javascript"},
	"json":     {Text, "json"},
	"ld":       {Text, "linker-script"},
	"md":       {Text, "markdown"},
	"png":      {Binary, "image", "png"},
	"ps1":      {Text, "powershell"},
	"py":       {Text, "python"},
	"pyi":      {Text, "pyi"},
	"pyx":      {Text, "cython"},
	"rs":       {Text, "rust"},
	"rst":      {Text, "rst"},
	"s":        {Text, "asm"},
	"sh":       {Text, "shell", "sh"},
	"svg":      {Text, "image", "svg", "xml"},
	"toml":     {Text, "toml"},
	"ts":       {Text, "ts"},
	"txt":      {Text, "plain-text"},
	"xml":      {Text, "xml"},
	"yaml":     {Text, "yaml"},
	"yml":      {Text, "yaml"},
	"zip":      {Binary, "zip"},
	"markdown": {Text, "markdown"},
}

var names = map[string][]string{
	".bashrc":        {Text, "shell", "bash"},
	".editorconfig":  {Text, "editorconfig"},
	".gitattributes": {Text, "gitattributes"},
	".gitignore":     {Text, "gitignore"},
	".gitmodules":    {Text, "gitmodules"},
	"CMakeLists.txt": {Text, "cmake"},
	"Dockerfile":     {Text, "dockerfile"},
	"LICENSE":        {Text, "plain-text"},
	"MANIFEST.in":    {Text, "plain-text"},
	"Makefile":       {Text, "makefile"},
	"setup.cfg":      {Text, "ini"},
}

var interpreters = map[string][]string{
	"bash":    {"shell", "bash"},
	"node":    {"javascript"},
	"perl":    {"perl"},
	"python":  {"python"},
	"python3": {"python", "python3"},
	"ruby":    {"ruby"},
	"sh":      {"shell", "sh"},
	"zsh":     {"shell", "zsh"},
}

// FromFilename returns the tags implied by a file's name alone.
func FromFilename(path string) Tags {
	base := filepath.Base(path)
	tags := NewTags()
	if byName, ok := names[base]; ok {
		tags.Add(byName...)
	}
	// Dockerfile.dev, Makefile.in and friends
	for _, prefix := range []string{"Dockerfile", "Makefile"} {
		if strings.HasPrefix(base, prefix+".") {
			tags.Add(names[prefix]...)
		}
	}
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if byExt, ok := extensions[strings.ToLower(ext)]; ok {
		tags.Add(byExt...)
	}
	return tags
}

// FromInterpreter returns the tags for a shebang interpreter name.
func FromInterpreter(interpreter string) []string {
	base := filepath.Base(interpreter)
	if tags, ok := interpreters[base]; ok {
		return tags
	}
	// python3.11 and similar
	for {
		dot := strings.LastIndexByte(base, '.')
		if dot < 0 {
			return nil
		}
		base = base[:dot]
		if tags, ok := interpreters[base]; ok {
			return tags
		}
	}
}

// ParseShebang returns the interpreter command of a script, or nil.
func ParseShebang(r io.Reader) []string {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil
	}
	if !strings.HasPrefix(line, "#!") {
		return nil
	}
	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return nil
	}
	if filepath.Base(fields[0]) == "env" {
		fields = fields[1:]
		if len(fields) > 0 && fields[0] == "-S" {
			fields = fields[1:]
		}
	}
	return fields
}

// IsText reports whether the first bytes read from r look like text.
func IsText(r io.Reader) (bool, error) {
	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	return looksLikeText(buf[:n]), nil
}

func looksLikeText(b []byte) bool {
	if bytes.IndexByte(b, 0) >= 0 {
		return false
	}
	// A multi-byte rune may be cut at the sniff boundary.
	for i := 0; i < utf8.UTFMax-1 && len(b) > 0 && !utf8.Valid(b); i++ {
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

// FromPath inspects a file on disk and returns its tags.
func FromPath(path string) (Tags, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("identify %s: %w", path, err)
	}

	mode := info.Mode()
	switch {
	case mode.IsDir():
		return NewTags(Directory), nil
	case mode&os.ModeSymlink != 0:
		return NewTags(Symlink), nil
	case mode&os.ModeSocket != 0:
		return NewTags(Socket), nil
	}

	tags := NewTags(File)
	executable := mode.Perm()&0o111 != 0
	if executable {
		tags.Add(Executable)
	} else {
		tags.Add(NonExecutable)
	}

	byName := FromFilename(path)
	for tag := range byName {
		tags.Add(tag)
	}

	if executable && !byName.Has(Text) && !byName.Has(Binary) {
		if f, err := os.Open(filepath.Clean(path)); err == nil {
			if cmd := ParseShebang(f); len(cmd) > 0 {
				tags.Add(FromInterpreter(cmd[0])...)
			}
			_ = f.Close()
		}
	}

	if !tags.Has(Text) && !tags.Has(Binary) {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("identify %s: %w", path, err)
		}
		defer f.Close()
		text, err := IsText(f)
		if err != nil {
			return nil, fmt.Errorf("identify %s: %w", path, err)
		}
		if text {
			tags.Add(Text)
		} else {
			tags.Add(Binary)
		}
	}

	return tags, nil
}

// IsKnown reports whether tag can ever be produced.
func IsKnown(tag string) bool {
	switch tag {
	case Directory, File, Symlink, Socket, Executable, NonExecutable, Text, Binary:
		return true
	}
	for _, m := range []map[string][]string{extensions, names, interpreters} {
		for _, tags := range m {
			for _, t := range tags {
				if t == tag {
					return true
				}
			}
		}
	}
	return false
}
