package permissions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-curator/internal/schemas"
)

// sectionKey optionally wraps the permission table inside a larger config file.
const sectionKey = "permissions"

// LoadFile reads a permission configuration from disk. See Parse for the format.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Message: "failed to read file", Cause: err}
	}
	reg, err := Parse(data)
	if err != nil {
		if cfgErr, ok := err.(*ConfigError); ok && cfgErr.Path == "" {
			cfgErr.Path = path
		}
		return nil, err
	}
	return reg, nil
}

// Parse decodes a YAML (or JSON) permission table:
//
//	skills: [remove, reorder]
//	experience.highlights: [reorder, rewrite]
//	summary: [rewrite]
//
// The same mapping may be nested under a top-level "permissions" key.
// Declaration order is preserved. Unknown operation names are ignored and
// reported on the entry's Ignored list.
func Parse(data []byte) (*Registry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ConfigError{Message: "failed to parse YAML", Cause: err}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return NewRegistry()
	}

	table := unwrapSection(root.Content[0])
	if table.Kind != yaml.MappingNode {
		return nil, &ConfigError{Message: fmt.Sprintf("line %d: expected a mapping of field paths to operation lists", table.Line)}
	}

	var generic map[string]any
	if err := table.Decode(&generic); err != nil {
		return nil, &ConfigError{Message: "failed to decode permission table", Cause: err}
	}
	if err := schemas.Validate(schemas.Permissions, generic); err != nil {
		return nil, &ConfigError{Message: "permission table does not match schema", Cause: err}
	}

	entries := make([]Entry, 0, len(table.Content)/2)
	for i := 0; i+1 < len(table.Content); i += 2 {
		key, val := table.Content[i], table.Content[i+1]

		var names []string
		if err := val.Decode(&names); err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("line %d: operations for %q", val.Line, key.Value), Cause: err}
		}

		entry := Entry{Path: key.Value}
		for _, name := range names {
			op, ok := ParseOperation(name)
			if !ok {
				entry.Ignored = append(entry.Ignored, name)
				continue
			}
			entry.Operations = append(entry.Operations, op)
		}
		entries = append(entries, entry)
	}

	return NewRegistry(entries...)
}

func unwrapSection(n *yaml.Node) *yaml.Node {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return n
	}
	if n.Content[0].Value == sectionKey && n.Content[1].Kind == yaml.MappingNode {
		return n.Content[1]
	}
	return n
}
