package script

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// On-disk YAML shapes. These stay private: the loader resolves them
// into domain types once, so nothing downstream re-checks optional
// attributes.

type scenarioDoc struct {
	Name   string     `yaml:"name"`
	Lines  []lineDoc  `yaml:"lines"`
	Frames []frameDoc `yaml:"frames"`
}

type lineDoc struct {
	Text      string        `yaml:"text"`
	Responses []responseDoc `yaml:"responses"`
}

type responseDoc struct {
	// Frame accepts a single name or a comma-separated list; every
	// named frame must fill for the option to be satisfied.
	Frame    string `yaml:"frame"`
	Action   string `yaml:"action"`
	Transfer bool   `yaml:"transfer"`
}

type frameDoc struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Fields      []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name    string     `yaml:"name"`
	Lexical stringList `yaml:"lexical"`
	Senses  stringList `yaml:"senses"`
	Pattern string     `yaml:"pattern"`
}

// stringList accepts either a YAML sequence or a single scalar
// (including the "*" wildcard).
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = stringList{s}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = stringList(items)
		return nil
	default:
		return fmt.Errorf("line %d: expected scalar or sequence", node.Line)
	}
}

// wildcard reports whether the list is the "*" (anything) marker.
func (l stringList) wildcard() bool {
	return len(l) == 1 && l[0] == "*"
}
