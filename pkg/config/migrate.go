package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Migrate rewrites a configuration written for older releases: a top-level
// list becomes the repos mapping, sha becomes rev and legacy stage names are
// renamed. It edits the node tree so comments survive. The boolean reports
// whether anything changed.
func Migrate(data []byte) ([]byte, bool, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, err
	}
	root := documentRoot(&doc)
	if root == nil {
		return data, false, nil
	}

	changed := false
	if root.Kind == yaml.SequenceNode {
		mapping := &yaml.Node{
			Kind: yaml.MappingNode,
			Tag:  "!!map",
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Tag: "!!str", Value: "repos"},
				root,
			},
		}
		doc.Content[0] = mapping
		root = mapping
		changed = true
	}
	if root.Kind != yaml.MappingNode {
		return nil, false, fmt.Errorf("expected a mapping at the top level, got %s", nodeKind(root))
	}

	if renameStageValues(mappingValue(root, "default_stages")) {
		changed = true
	}

	if repos := mappingValue(root, "repos"); repos != nil && repos.Kind == yaml.SequenceNode {
		for _, repo := range repos.Content {
			if repo.Kind != yaml.MappingNode {
				continue
			}
			if renameKey(repo, "sha", "rev") {
				changed = true
			}
			hooks := mappingValue(repo, "hooks")
			if hooks == nil || hooks.Kind != yaml.SequenceNode {
				continue
			}
			for _, hook := range hooks.Content {
				if hook.Kind == yaml.MappingNode && renameStageValues(mappingValue(hook, "stages")) {
					changed = true
				}
			}
		}
	}

	if !changed {
		return data, false, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, false, err
	}
	if err := enc.Close(); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}

func renameKey(m *yaml.Node, from, to string) bool {
	if mappingValue(m, to) != nil {
		return false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == from {
			m.Content[i].Value = to
			return true
		}
	}
	return false
}

func renameStageValues(seq *yaml.Node) bool {
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return false
	}
	changed := false
	for _, item := range seq.Content {
		if renamed, ok := legacyStages[item.Value]; ok && item.Kind == yaml.ScalarNode {
			item.Value = renamed
			changed = true
		}
	}
	return changed
}
