package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/facegen/internal/selector"
)

// familyEntry decodes one group family in either of two forms: the
// two-element array [[names...], [weights...]] or a mapping with groups
// and weights keys. JSON input is read as YAML.
type familyEntry selector.Family

func (e *familyEntry) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		if len(n.Content) != 2 {
			return fmt.Errorf("line %d: family must be [names, weights], got %d items", n.Line, len(n.Content))
		}
		if err := n.Content[0].Decode(&e.Groups); err != nil {
			return fmt.Errorf("line %d: family names: %w", n.Line, err)
		}
		if err := n.Content[1].Decode(&e.Weights); err != nil {
			return fmt.Errorf("line %d: family weights: %w", n.Line, err)
		}
		return nil
	case yaml.MappingNode:
		var m struct {
			Groups  []string  `yaml:"groups"`
			Weights []float64 `yaml:"weights"`
		}
		if err := n.Decode(&m); err != nil {
			return err
		}
		e.Groups, e.Weights = m.Groups, m.Weights
		return nil
	default:
		return fmt.Errorf("line %d: family must be a list or a mapping", n.Line)
	}
}

// ParseFamilies decodes and validates a group-family document.
func ParseFamilies(data []byte) ([]selector.Family, error) {
	var entries []familyEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	fams := make([]selector.Family, len(entries))
	for i, e := range entries {
		f := selector.Family(e)
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("family %d: %w", i, err)
		}
		fams[i] = f
	}
	return fams, nil
}

// LoadFamilies reads the group-family file at path.
func LoadFamilies(path string) ([]selector.Family, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fams, err := ParseFamilies(data)
	if err != nil {
		return nil, fmt.Errorf("loading families from %s: %w", path, err)
	}
	return fams, nil
}
