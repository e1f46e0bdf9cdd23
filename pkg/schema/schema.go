// Package schema checks the structure of configuration and manifest
// documents against an embedded CUE schema before they are decoded.
//
// Decoding into Go structs silently drops values of the wrong shape, for
// example args written as a string rather than a list. Unifying the
// document with the schema reports those with their path.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"sigs.k8s.io/yaml"
)

//go:embed config.cue
var source string

// Definitions available in the embedded schema
const (
	Config   = "#Config"
	Manifest = "#Manifest"
)

// Violation is a single schema mismatch.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Error lists every violation found in a document.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "schema violation: " + strings.Join(msgs, "; ")
}

// Validator unifies documents with one definition of the schema. A
// Validator is safe for concurrent use.
type Validator struct {
	mu   sync.Mutex
	cCtx *cue.Context
	def  cue.Value
}

// NewValidator compiles the embedded schema and selects definition.
func NewValidator(definition string) (*Validator, error) {
	cCtx := cuecontext.New()
	schema := cCtx.CompileString(source, cue.Filename("config.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath(definition))
	if !def.Exists() {
		return nil, fmt.Errorf("schema has no definition %s", definition)
	}
	return &Validator{cCtx: cCtx, def: def}, nil
}

// ValidateYAML checks a YAML document. It returns *Error when the document
// parses but does not fit the schema.
func (v *Validator) ValidateYAML(data []byte) error {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting YAML: %w", err)
	}
	return v.validateJSON(jsonData)
}

func (v *Validator) validateJSON(data []byte) error {
	// cue.Context is not safe for concurrent use.
	v.mu.Lock()
	defer v.mu.Unlock()

	doc := v.cCtx.CompileBytes(data)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("compiling document: %w", err)
	}

	unified := v.def.Unify(doc)
	err := unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var cErr cueerrors.Error
	if !errors.As(err, &cErr) {
		return fmt.Errorf("validating document: %w", err)
	}
	return toError(err)
}

func toError(err error) *Error {
	out := &Error{}
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		vio := Violation{
			Path:    formatPath(e.Path()),
			Message: fmt.Sprintf(format, args...),
		}
		if key := vio.String(); !seen[key] {
			seen[key] = true
			out.Violations = append(out.Violations, vio)
		}
	}
	return out
}

// formatPath turns CUE selectors like [#Config repos 0 hooks 1 args] into
// repos[0].hooks[1].args. The leading definition name is dropped.
func formatPath(selectors []string) string {
	if len(selectors) > 0 && strings.HasPrefix(selectors[0], "#") {
		selectors = selectors[1:]
	}
	var b strings.Builder
	for _, s := range selectors {
		if s != "" && strings.Trim(s, "0123456789") == "" {
			b.WriteString("[" + s + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s)
	}
	return b.String()
}

var (
	configOnce      sync.Once
	configValidator *Validator
	configErr       error
)

// ValidateConfig checks a .pre-commit-config.yaml document.
func ValidateConfig(data []byte) error {
	configOnce.Do(func() {
		configValidator, configErr = NewValidator(Config)
	})
	if configErr != nil {
		return configErr
	}
	return configValidator.ValidateYAML(data)
}

var (
	manifestOnce      sync.Once
	manifestValidator *Validator
	manifestErr       error
)

// ValidateManifest checks a .pre-commit-hooks.yaml document.
func ValidateManifest(data []byte) error {
	manifestOnce.Do(func() {
		manifestValidator, manifestErr = NewValidator(Manifest)
	})
	if manifestErr != nil {
		return manifestErr
	}
	return manifestValidator.ValidateYAML(data)
}
