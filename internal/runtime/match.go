package runtime

import (
	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/lexicon"
)

// MatchResult reports whether a field spec was satisfied, which token
// span it consumed, and how close the match was. Distance is the
// hypernym-closure depth of the winning sense (0 for a direct sense,
// and always 0 for pattern and any-matches).
type MatchResult struct {
	Matched  bool
	Start    int
	End      int
	Distance int
	Pattern  bool
}

// Matcher scores token spans against field specs. It is a pure function
// over the shared lexical resource plus the utterance, so one matcher
// serves every session.
type Matcher struct {
	lex   lexicon.Resource
	depth int
}

// NewMatcher creates a matcher with the given closure depth bound.
func NewMatcher(lex lexicon.Resource, depth int) *Matcher {
	return &Matcher{lex: lex, depth: depth}
}

// Match finds the best span of unconsumed tokens satisfying spec.
// consumed marks tokens already claimed by earlier fields of the same
// frame; a matched span never overlaps them.
//
// Tie-breaks, in order: pattern beats semantic (a pattern field never
// evaluates semantics at all), smaller closure distance, longer
// consumed span, then earliest start. The result is deterministic for
// identical inputs.
func (m *Matcher) Match(tokens []domain.Token, consumed []bool, spec *domain.FieldSpec) MatchResult {
	if spec.Kind == domain.FieldPattern {
		return m.matchPattern(tokens, consumed, spec)
	}
	return m.matchSemantic(tokens, consumed, spec)
}

// matchPattern tries every contiguous unconsumed span, longest first,
// against the full-string regex. A failed pattern is final: rigid
// formats never fall back to semantic matching.
func (m *Matcher) matchPattern(tokens []domain.Token, consumed []bool, spec *domain.FieldSpec) MatchResult {
	best := MatchResult{}
	for start := 0; start < len(tokens); start++ {
		if consumed[start] {
			continue
		}
		span := domain.TokenSpan{}
		for end := start; end < len(tokens) && !consumed[end]; end++ {
			span = append(span, tokens[end])
			if !spec.Pattern.MatchString(span.Text()) {
				continue
			}
			length := end - start + 1
			if !best.Matched || length > best.End-best.Start {
				best = MatchResult{Matched: true, Start: start, End: end + 1, Pattern: true}
			}
		}
	}
	return best
}

// matchSemantic scans single unconsumed tokens through the lexical
// filter and the bounded hypernym closure.
func (m *Matcher) matchSemantic(tokens []domain.Token, consumed []bool, spec *domain.FieldSpec) MatchResult {
	best := MatchResult{}
	for i, tok := range tokens {
		if consumed[i] || !spec.AllowsPOS(tok.POS) {
			continue
		}

		var dist int
		var ok bool
		if spec.Kind == domain.FieldAny {
			dist, ok = 0, true
		} else {
			dist, ok = m.closureDistance(tok, spec.Senses)
		}
		if !ok {
			continue
		}

		if !best.Matched || dist < best.Distance {
			best = MatchResult{Matched: true, Start: i, End: i + 1, Distance: dist}
		}
	}
	return best
}

// closureDistance walks breadth-first from the token's senses through
// hypernym edges, up to the configured depth, and returns the distance
// of the first level intersecting the declared sense set.
func (m *Matcher) closureDistance(tok domain.Token, want map[domain.Sense]bool) (int, bool) {
	frontier := m.lex.SensesOf(tok.Text, tok.POS)
	if len(frontier) == 0 {
		return 0, false
	}

	seen := make(map[domain.Sense]bool)
	for depth := 0; depth <= m.depth; depth++ {
		var next []domain.Sense
		for _, s := range frontier {
			if seen[s] {
				continue
			}
			seen[s] = true
			if want[s] {
				return depth, true
			}
			next = append(next, m.lex.HypernymsOf(s)...)
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}
	return 0, false
}
