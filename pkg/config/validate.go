package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/blairham/hookgate/pkg/identify"
	"github.com/blairham/hookgate/pkg/regex"
)

var versionPattern = regex.MustCompile(`^\d+(\.\d+)*$`)

// ValidationError describes one invalid field.
type ValidationError struct {
	Value   any
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value == nil || e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors aggregates every problem found in a document.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Fields returns the dotted path of every invalid field.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, len(v))
	for i, e := range v {
		fields[i] = e.Field
	}
	return fields
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) add(field string, value any, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

func (v *validator) regex(field, pattern string) {
	if pattern == "" {
		return
	}
	if err := regex.Valid(pattern); err != nil {
		v.add(field, pattern, "invalid regular expression: %v", err)
	}
}

func (v *validator) stages(field string, stages []string) {
	for i, s := range stages {
		if !slices.Contains(Stages, s) {
			v.add(fmt.Sprintf("%s[%d]", field, i), s, "unknown stage, expected one of %s", strings.Join(Stages, ", "))
		}
	}
}

func (v *validator) version(field, version string) {
	if version != "" && !versionPattern.MatchString(version) {
		v.add(field, version, "expected a dotted version number")
	}
}

// Validate validates the configuration. It returns nil or ValidationErrors
// listing every problem found.
func (c *Config) Validate() error {
	v := &validator{}

	v.regex("files", c.Files)
	v.regex("exclude", c.Exclude)
	v.stages("default_stages", c.DefaultStages)
	v.version("minimum_pre_commit_version", c.MinimumPreCommitVersion)
	for i, t := range c.DefaultInstallHookTypes {
		if !slices.Contains(HookTypes, t) {
			v.add(fmt.Sprintf("default_install_hook_types[%d]", i), t,
				"unknown hook type, expected one of %s", strings.Join(HookTypes, ", "))
		}
	}

	for i, repo := range c.Repos {
		c.validateRepo(v, fmt.Sprintf("repos[%d]", i), repo)
	}

	return v.err()
}

func (c *Config) validateRepo(v *validator, path string, repo Repo) {
	switch {
	case repo.Repo == "":
		v.add(path+".repo", nil, "repository URL is required")
	case repo.IsRemote() && repo.Rev == "":
		v.add(path+".rev", nil, "revision is required for %s", repo.Repo)
	case !repo.IsRemote() && repo.Rev != "":
		v.add(path+".rev", repo.Rev, "%s repositories do not take a revision", repo.Repo)
	}

	if len(repo.Hooks) == 0 {
		v.add(path+".hooks", nil, "no hooks configured")
	}

	for j, hook := range repo.Hooks {
		hookPath := fmt.Sprintf("%s.hooks[%d]", path, j)
		if hook.ID == "" {
			v.add(hookPath+".id", nil, "hook ID is required")
		}
		switch {
		case repo.IsLocal():
			validateLocalHook(v, hookPath, hook)
		case repo.IsMeta() && hook.ID != "" && !slices.Contains(MetaHookIDs, hook.ID):
			v.add(hookPath+".id", hook.ID, "unknown meta hook, expected one of %s", strings.Join(MetaHookIDs, ", "))
		}
		v.hookFields(hookPath, hook)
	}
}

func validateLocalHook(v *validator, path string, hook Hook) {
	if hook.Name == "" {
		v.add(path+".name", nil, "local hooks require a name")
	}
	if hook.Entry == "" {
		v.add(path+".entry", nil, "local hooks require an entry")
	}
	if hook.Language == "" {
		v.add(path+".language", nil, "local hooks require a language")
	}
}

// ValidateHook checks the fields shared by configured and manifest hooks and
// returns the problems found, keyed under path.
func ValidateHook(path string, hook Hook) ValidationErrors {
	v := &validator{}
	v.hookFields(path, hook)
	return v.errs
}

func (v *validator) hookFields(path string, hook Hook) {
	v.regex(path+".files", hook.Files)
	v.regex(path+".exclude", hook.Exclude)
	v.stages(path+".stages", hook.Stages)
	v.tags(path+".types", hook.Types)
	v.tags(path+".types_or", hook.TypesOr)
	v.tags(path+".exclude_types", hook.ExcludeTypes)
	v.version(path+".minimum_pre_commit_version", hook.MinimumPreCommitVersion)
	if hook.Language != "" && !slices.Contains(Languages, hook.Language) {
		v.add(path+".language", hook.Language, "unknown language")
	}
}

func (v *validator) tags(field string, tags []string) {
	for i, tag := range tags {
		if !identify.IsKnown(tag) {
			v.add(fmt.Sprintf("%s[%d]", field, i), tag, "unknown type tag")
		}
	}
}
