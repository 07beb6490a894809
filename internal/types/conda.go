package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CondaEnvironment is the parsed form of an MLflow conda.yaml document.
type CondaEnvironment struct {
	Name         string            `yaml:"name,omitempty"`
	Channels     []string          `yaml:"channels,omitempty"`
	Dependencies CondaDependencies `yaml:"dependencies,omitempty"`
}

// CondaDependency is one entry of the dependencies list. It is either a
// CondaConstraint or a PipBlock.
type CondaDependency interface {
	condaDependency()
}

// CondaConstraint is a bare conda package constraint such as
// "scikit-learn=0.23.2".
type CondaConstraint string

// PipBlock is the nested "pip:" list of pip requirement strings.
type PipBlock []string

func (CondaConstraint) condaDependency() {}
func (PipBlock) condaDependency()        {}

type CondaDependencies []CondaDependency

func (d *CondaDependencies) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return &MalformedDependencyError{
			Raw:    node.Value,
			Reason: fmt.Sprintf("dependencies must be a list (line %d)", node.Line),
		}
	}
	out := make(CondaDependencies, 0, len(node.Content))
	for _, item := range node.Content {
		dep, err := decodeCondaDependency(item)
		if err != nil {
			return err
		}
		out = append(out, dep)
	}
	*d = out
	return nil
}

func (d CondaDependencies) MarshalYAML() (any, error) {
	out := make([]any, 0, len(d))
	for _, dep := range d {
		switch v := dep.(type) {
		case CondaConstraint:
			out = append(out, string(v))
		case PipBlock:
			out = append(out, map[string][]string{"pip": []string(v)})
		}
	}
	return out, nil
}

func decodeCondaDependency(node *yaml.Node) (CondaDependency, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			return nil, &MalformedDependencyError{
				Raw:    node.Value,
				Reason: fmt.Sprintf("empty dependency entry (line %d)", node.Line),
			}
		}
		return CondaConstraint(node.Value), nil
	case yaml.MappingNode:
		if len(node.Content) != 2 || node.Content[0].Value != "pip" {
			return nil, &MalformedDependencyError{
				Raw:    mappingKeys(node),
				Reason: fmt.Sprintf("only a single pip mapping is supported (line %d)", node.Line),
			}
		}
		var entries []string
		if err := node.Content[1].Decode(&entries); err != nil {
			return nil, &MalformedDependencyError{
				Raw:    "pip",
				Reason: fmt.Sprintf("pip block must be a list of strings (line %d)", node.Line),
			}
		}
		return PipBlock(entries), nil
	default:
		return nil, &MalformedDependencyError{
			Raw:    node.Value,
			Reason: fmt.Sprintf("unsupported dependency entry (line %d)", node.Line),
		}
	}
}

func mappingKeys(node *yaml.Node) string {
	keys := ""
	for i := 0; i+1 < len(node.Content); i += 2 {
		if keys != "" {
			keys += ","
		}
		keys += node.Content[i].Value
	}
	return keys
}
