// Package lexicon defines the lexical-semantic resource interface the
// matcher walks, plus a static in-memory implementation loaded from
// YAML for the CLI and for tests. The resource is read-only after
// initialization and safe to share across all sessions.
package lexicon

import "github.com/framelab/scenic/pkg/domain"

// Resource provides word senses and the generalization (hypernym)
// relation between them. Implementations must be safe for concurrent
// readers.
type Resource interface {
	// SensesOf returns the senses of a token under the given
	// part-of-speech tag. Unknown tokens return nil.
	SensesOf(token, pos string) []domain.Sense

	// HypernymsOf returns the direct generalizations of a sense.
	HypernymsOf(sense domain.Sense) []domain.Sense
}
