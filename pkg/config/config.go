// Package config provides configuration parsing and validation for hookgate.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the default name for the hook configuration file
const ConfigFileName = ".pre-commit-config.yaml"

// Special repository values that carry no revision
const (
	LocalRepo = "local"
	MetaRepo  = "meta"
)

// ErrEmptyConfig is returned when a configuration file has no content.
var ErrEmptyConfig = errors.New("config file is empty")

// ErrMissingRepos is returned when the configuration has no repos key.
var ErrMissingRepos = errors.New("missing required key: repos")

// ErrLegacyFormat is returned for the old top-level list configuration.
var ErrLegacyFormat = errors.New("configuration is a top-level list; run migrate-config")

// Config represents the .pre-commit-config.yaml structure
type Config struct {
	DefaultLanguageVersion  map[string]string `yaml:"default_language_version,omitempty"`
	CI                      map[string]any    `yaml:"ci,omitempty"`
	Files                   string            `yaml:"files,omitempty"`
	Exclude                 string            `yaml:"exclude,omitempty"`
	MinimumPreCommitVersion string            `yaml:"minimum_pre_commit_version,omitempty"`
	Repos                   []Repo            `yaml:"repos"`
	DefaultStages           []string          `yaml:"default_stages,omitempty"`
	DefaultInstallHookTypes []string          `yaml:"default_install_hook_types,omitempty"`
	FailFast                bool              `yaml:"fail_fast,omitempty"`

	// Warnings collects non-fatal findings from parsing: unexpected keys and
	// renamed stages.
	Warnings []string `yaml:"-"`
}

// Repo represents a repository configuration
type Repo struct {
	Repo  string `yaml:"repo"`
	Rev   string `yaml:"rev,omitempty"`
	Hooks []Hook `yaml:"hooks"`
}

// IsLocal reports whether the repo hooks are defined inline.
func (r Repo) IsLocal() bool { return r.Repo == LocalRepo }

// IsMeta reports whether the repo refers to the built-in meta hooks.
func (r Repo) IsMeta() bool { return r.Repo == MetaRepo }

// IsRemote reports whether the repo must be fetched to resolve its hooks.
func (r Repo) IsRemote() bool { return !r.IsLocal() && !r.IsMeta() }

// Hook represents a hook configuration. The same shape describes a hook in a
// repository's .pre-commit-hooks.yaml manifest.
type Hook struct {
	PassFilenames           *bool    `yaml:"pass_filenames,omitempty"`
	AlwaysRun               *bool    `yaml:"always_run,omitempty"`
	RequireSerial           *bool    `yaml:"require_serial,omitempty"`
	Verbose                 *bool    `yaml:"verbose,omitempty"`
	FailFast                *bool    `yaml:"fail_fast,omitempty"`
	ID                      string   `yaml:"id"`
	Alias                   string   `yaml:"alias,omitempty"`
	Name                    string   `yaml:"name,omitempty"`
	Entry                   string   `yaml:"entry,omitempty"`
	Language                string   `yaml:"language,omitempty"`
	Files                   string   `yaml:"files,omitempty"`
	Exclude                 string   `yaml:"exclude,omitempty"`
	LogFile                 string   `yaml:"log_file,omitempty"`
	Description             string   `yaml:"description,omitempty"`
	LanguageVersion         string   `yaml:"language_version,omitempty"`
	MinimumPreCommitVersion string   `yaml:"minimum_pre_commit_version,omitempty"`
	Types                   []string `yaml:"types,omitempty"`
	TypesOr                 []string `yaml:"types_or,omitempty"`
	ExcludeTypes            []string `yaml:"exclude_types,omitempty"`
	AdditionalDependencies  []string `yaml:"additional_dependencies,omitempty"`
	Args                    []string `yaml:"args,omitempty"`
	Stages                  []string `yaml:"stages,omitempty"`
}

// DisplayName returns the hook name, falling back to its id.
func (h Hook) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

// ShouldPassFilenames defaults to true.
func (h Hook) ShouldPassFilenames() bool { return h.PassFilenames == nil || *h.PassFilenames }

// ShouldAlwaysRun defaults to false.
func (h Hook) ShouldAlwaysRun() bool { return h.AlwaysRun != nil && *h.AlwaysRun }

// IsSerial defaults to false.
func (h Hook) IsSerial() bool { return h.RequireSerial != nil && *h.RequireSerial }

// IsVerbose defaults to false.
func (h Hook) IsVerbose() bool { return h.Verbose != nil && *h.Verbose }

// StopsRun reports whether a failure of this hook ends the run.
func (h Hook) StopsRun() bool { return h.FailFast != nil && *h.FailFast }

// Bool returns a pointer to b, for building hooks in code.
func Bool(b bool) *bool { return &b }

var (
	topLevelKeys = []string{
		"repos", "default_install_hook_types", "default_language_version",
		"default_stages", "files", "exclude", "fail_fast",
		"minimum_pre_commit_version", "ci",
	}
	repoKeys = []string{"repo", "rev", "hooks"}
	hookKeys = []string{
		"id", "alias", "name", "entry", "language", "files", "exclude", "types",
		"types_or", "exclude_types", "additional_dependencies", "args",
		"always_run", "fail_fast", "pass_filenames", "description",
		"language_version", "log_file", "minimum_pre_commit_version",
		"require_serial", "stages", "verbose",
	}
)

// LoadConfig loads the configuration from file. An empty path means
// ConfigFileName in the current directory.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = ConfigFileName
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document.
func Parse(data []byte) (*Config, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrEmptyConfig
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	root := documentRoot(&doc)
	if root == nil || root.Kind == 0 || root.ShortTag() == "!!null" {
		return nil, ErrEmptyConfig
	}
	if root.Kind == yaml.SequenceNode {
		return nil, ErrLegacyFormat
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at the top level, got %s", nodeKind(root))
	}

	// a decoded empty list cannot tell an absent key from repos: []
	if mappingValue(root, "repos") == nil {
		return nil, ErrMissingRepos
	}

	var cfg Config
	if err := root.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.Warnings = append(cfg.Warnings, unexpectedKeys(root)...)
	cfg.normalizeStages()
	return &cfg, nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		return doc.Content[0]
	}
	return doc
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unknown node"
	}
}

// unexpectedKeys walks the document and reports keys the schema does not
// define, the way pre-commit warns instead of failing.
func unexpectedKeys(root *yaml.Node) []string {
	var warnings []string
	warnings = append(warnings, checkKeys(root, topLevelKeys, "")...)

	repos := mappingValue(root, "repos")
	if repos == nil || repos.Kind != yaml.SequenceNode {
		return warnings
	}
	for i, repo := range repos.Content {
		if repo.Kind != yaml.MappingNode {
			continue
		}
		path := fmt.Sprintf("repos[%d]", i)
		warnings = append(warnings, checkKeys(repo, repoKeys, path)...)

		hooks := mappingValue(repo, "hooks")
		if hooks == nil || hooks.Kind != yaml.SequenceNode {
			continue
		}
		for j, hook := range hooks.Content {
			if hook.Kind != yaml.MappingNode {
				continue
			}
			warnings = append(warnings, checkKeys(hook, hookKeys, fmt.Sprintf("%s.hooks[%d]", path, j))...)
		}
	}
	return warnings
}

func checkKeys(m *yaml.Node, known []string, path string) []string {
	var unknown []string
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i].Value
		if !slices.Contains(known, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	where := "at top level"
	if path != "" {
		where = "at " + path
	}
	return []string{fmt.Sprintf("Unexpected key(s) present %s: %s", where, strings.Join(unknown, ", "))}
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func (c *Config) normalizeStages() {
	c.DefaultStages = c.renameStages(c.DefaultStages, "default_stages")
	for i := range c.Repos {
		for j := range c.Repos[i].Hooks {
			hook := &c.Repos[i].Hooks[j]
			hook.Stages = c.renameStages(hook.Stages, fmt.Sprintf("repos[%d].hooks[%d].stages", i, j))
		}
	}
}

func (c *Config) renameStages(stages []string, field string) []string {
	for i, s := range stages {
		if renamed, ok := legacyStages[s]; ok {
			c.Warnings = append(c.Warnings,
				fmt.Sprintf("%s uses deprecated stage name %q; use %q", field, s, renamed))
			stages[i] = renamed
		}
	}
	return stages
}

// HookStages returns the stages a hook runs in: its own stages, else the
// configured default_stages, else every stage.
func (c *Config) HookStages(hook Hook) []string {
	if len(hook.Stages) > 0 {
		return hook.Stages
	}
	if len(c.DefaultStages) > 0 {
		return c.DefaultStages
	}
	return slices.Clone(Stages)
}

// InstallHookTypes returns the git hook scripts install should write.
func (c *Config) InstallHookTypes() []string {
	if len(c.DefaultInstallHookTypes) > 0 {
		return c.DefaultInstallHookTypes
	}
	return []string{HookTypePreCommit}
}

// DefaultConfig returns the sample configuration
func DefaultConfig() *Config {
	return &Config{
		Repos: []Repo{
			{
				Repo: "https://github.com/pre-commit/pre-commit-hooks",
				Rev:  "v5.0.0",
				Hooks: []Hook{
					{ID: "trailing-whitespace"},
					{ID: "end-of-file-fixer"},
					{ID: "check-yaml"},
					{ID: "check-added-large-files"},
				},
			},
		},
	}
}

// Marshal renders c as YAML with two-space indentation.
func Marshal(c *Config) ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
