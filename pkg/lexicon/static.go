package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/framelab/scenic/pkg/domain"
)

// Entry is one word of the static lexicon.
type Entry struct {
	Word   string         `yaml:"word"`
	POS    string         `yaml:"pos"`
	Senses []domain.Sense `yaml:"senses"`
}

type document struct {
	Entries   []Entry                         `yaml:"entries"`
	Hypernyms map[domain.Sense][]domain.Sense `yaml:"hypernyms"`
}

type entryKey struct {
	word string
	pos  string
}

// Static implements Resource over an in-memory table. It doubles as a
// fallback POS tagger for transports that have no external tagger.
type Static struct {
	senses    map[entryKey][]domain.Sense
	tags      map[string][]string
	hypernyms map[domain.Sense][]domain.Sense
}

// NewStatic builds a resource from entries and a hypernym edge list.
func NewStatic(entries []Entry, hypernyms map[domain.Sense][]domain.Sense) *Static {
	s := &Static{
		senses:    make(map[entryKey][]domain.Sense),
		tags:      make(map[string][]string),
		hypernyms: hypernyms,
	}
	if s.hypernyms == nil {
		s.hypernyms = make(map[domain.Sense][]domain.Sense)
	}
	for _, e := range entries {
		word := strings.ToLower(e.Word)
		key := entryKey{word: word, pos: e.POS}
		s.senses[key] = append(s.senses[key], e.Senses...)
		s.tags[word] = append(s.tags[word], e.POS)
	}
	return s
}

// Load reads a YAML lexicon file.
func Load(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	return NewStatic(doc.Entries, doc.Hypernyms), nil
}

// SensesOf implements Resource. Lookup is case-insensitive.
func (s *Static) SensesOf(token, pos string) []domain.Sense {
	return s.senses[entryKey{word: strings.ToLower(token), pos: pos}]
}

// HypernymsOf implements Resource.
func (s *Static) HypernymsOf(sense domain.Sense) []domain.Sense {
	return s.hypernyms[sense]
}

// Tag splits raw text on whitespace and tags each token with the first
// part of speech the lexicon knows for it. Unknown words get the "UNK"
// tag, punctuation is stripped. This is a convenience for the CLI
// transport; production transports supply pre-tagged tokens.
func (s *Static) Tag(text string) []domain.Token {
	var out []domain.Token
	for _, raw := range strings.Fields(text) {
		word := strings.Trim(raw, ".,!?;:\"'")
		if word == "" {
			continue
		}
		pos := "UNK"
		if tags := s.tags[strings.ToLower(word)]; len(tags) > 0 {
			pos = tags[0]
		}
		out = append(out, domain.Token{Text: word, POS: pos})
	}
	return out
}
