package domain

import "regexp"

// FieldKind constants identify the resolved variant of a field spec.
// The loader fixes the kind once so the matcher never re-inspects
// optional attributes.
const (
	// FieldPattern matches a rigid text format via full-string regex.
	// A pattern is authoritative: it never falls back to semantics.
	FieldPattern = "pattern"
	// FieldSemantic matches a token whose sense closure intersects the
	// declared seed senses.
	FieldSemantic = "semantic"
	// FieldAny matches any token that passes the lexical filter.
	FieldAny = "any"
)

// Sense is an identifier in the external lexical-semantic resource,
// e.g. a WordNet-style synset key such as "person.n.01".
type Sense string

// FieldSpec is one slot of a frame: the constraints a response fragment
// must satisfy to fill it.
type FieldSpec struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`

	// Lexical is the allowed part-of-speech set. Empty means any.
	Lexical map[string]bool `json:"lexical,omitempty" yaml:"lexical,omitempty"`

	// Senses holds the seed senses for hypernym-closure matching.
	// Only consulted when Kind == FieldSemantic.
	Senses map[Sense]bool `json:"senses,omitempty" yaml:"senses,omitempty"`

	// Pattern is the compiled full-string regex.
	// Only set when Kind == FieldPattern.
	Pattern *regexp.Regexp `json:"-" yaml:"-"`
}

// AllowsPOS reports whether the field's lexical filter accepts the tag.
func (f *FieldSpec) AllowsPOS(tag string) bool {
	if len(f.Lexical) == 0 {
		return true
	}
	return f.Lexical[tag]
}

// Frame is a named schema of expected fields in a caller response.
type Frame struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []*FieldSpec `json:"fields" yaml:"fields"`
}

// Field returns the named field spec, or nil.
func (f *Frame) Field(name string) *FieldSpec {
	for _, fs := range f.Fields {
		if fs.Name == name {
			return fs
		}
	}
	return nil
}

// Instance is a filled frame: a non-empty extracted value for every
// field of its definition. Instances are what the frame store keeps and
// what templates read.
type Instance struct {
	Frame  string            `json:"frame"`
	Fields map[string]string `json:"fields"`
}

// NewInstance creates an empty instance for the named frame.
func NewInstance(frame string) *Instance {
	return &Instance{Frame: frame, Fields: make(map[string]string)}
}

// Clone returns a deep copy, keeping stored instances isolated from
// caller mutation.
func (i *Instance) Clone() *Instance {
	c := NewInstance(i.Frame)
	for k, v := range i.Fields {
		c.Fields[k] = v
	}
	return c
}
