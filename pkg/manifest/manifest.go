// Package manifest reads the .pre-commit-hooks.yaml file a hook repository
// publishes and merges configured hooks over its definitions.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blairham/hookgate/pkg/config"
)

// FileName is the manifest file at the root of a hook repository
const FileName = ".pre-commit-hooks.yaml"

// ErrHookNotFound is returned by Lookup for an id the manifest lacks.
var ErrHookNotFound = errors.New("hook not found in manifest")

// Manifest is the ordered list of hooks a repository provides.
type Manifest struct {
	Hooks []config.Hook
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest document. An empty document is an empty manifest.
func Parse(data []byte) (*Manifest, error) {
	if strings.TrimSpace(string(data)) == "" {
		return &Manifest{}, nil
	}
	var hooks []config.Hook
	if err := yaml.Unmarshal(data, &hooks); err != nil {
		return nil, err
	}
	for i := range hooks {
		for j, s := range hooks[i].Stages {
			hooks[i].Stages[j] = config.NormalizeStage(s)
		}
	}
	return &Manifest{Hooks: hooks}, nil
}

// Validate checks that every hook declares id, name, entry and a known
// language, and that ids are unique.
func (m *Manifest) Validate() error {
	var errs config.ValidationErrors
	seen := make(map[string]int)

	for i, hook := range m.Hooks {
		path := fmt.Sprintf("[%d]", i)
		if hook.ID == "" {
			errs = append(errs, &config.ValidationError{Field: path + ".id", Message: "hook must have an id"})
		} else if first, dup := seen[hook.ID]; dup {
			errs = append(errs, &config.ValidationError{
				Field:   path + ".id",
				Value:   hook.ID,
				Message: fmt.Sprintf("duplicate of [%d]", first),
			})
		} else {
			seen[hook.ID] = i
		}
		if hook.Name == "" {
			errs = append(errs, &config.ValidationError{Field: path + ".name", Message: "hook must have a name"})
		}
		if hook.Entry == "" {
			errs = append(errs, &config.ValidationError{Field: path + ".entry", Message: "hook must have an entry"})
		}
		if hook.Language == "" {
			errs = append(errs, &config.ValidationError{Field: path + ".language", Message: "hook must have a language"})
		}
		errs = append(errs, config.ValidateHook(path, hook)...)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IDs returns the hook ids in manifest order.
func (m *Manifest) IDs() []string {
	ids := make([]string, len(m.Hooks))
	for i, h := range m.Hooks {
		ids[i] = h.ID
	}
	return ids
}

// Lookup returns the definition for id.
func (m *Manifest) Lookup(id string) (config.Hook, error) {
	for _, h := range m.Hooks {
		if h.ID == id {
			return h, nil
		}
	}
	return config.Hook{}, fmt.Errorf("%w: %s", ErrHookNotFound, id)
}

// Apply overlays the fields set in override onto base. The configured hook
// wins for every field it sets; id always comes from base.
func Apply(base, override config.Hook) config.Hook {
	result := base

	applyString(&result.Alias, override.Alias)
	applyString(&result.Name, override.Name)
	applyString(&result.Entry, override.Entry)
	applyString(&result.Language, override.Language)
	applyString(&result.Files, override.Files)
	applyString(&result.Exclude, override.Exclude)
	applyString(&result.LogFile, override.LogFile)
	applyString(&result.Description, override.Description)
	applyString(&result.LanguageVersion, override.LanguageVersion)
	applyString(&result.MinimumPreCommitVersion, override.MinimumPreCommitVersion)
	applySlice(&result.Types, override.Types)
	applySlice(&result.TypesOr, override.TypesOr)
	applySlice(&result.ExcludeTypes, override.ExcludeTypes)
	applySlice(&result.AdditionalDependencies, override.AdditionalDependencies)
	applySlice(&result.Args, override.Args)
	applySlice(&result.Stages, override.Stages)
	applyBool(&result.PassFilenames, override.PassFilenames)
	applyBool(&result.AlwaysRun, override.AlwaysRun)
	applyBool(&result.RequireSerial, override.RequireSerial)
	applyBool(&result.Verbose, override.Verbose)
	applyBool(&result.FailFast, override.FailFast)

	return result
}

func applyString(target *string, override string) {
	if override != "" {
		*target = override
	}
}

func applySlice[T any](target *[]T, override []T) {
	if override != nil {
		*target = override
	}
}

func applyBool(target **bool, override *bool) {
	if override != nil {
		*target = override
	}
}
