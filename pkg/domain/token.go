package domain

// Token is a single utterance token with its part-of-speech tag, as
// produced by the external tagger (or the static lexicon fallback).
type Token struct {
	Text string `json:"text"`
	POS  string `json:"pos"`
}

// TokenSpan is a contiguous run of tokens from one utterance.
type TokenSpan []Token

// Text joins the span back into raw text for pattern matching.
func (s TokenSpan) Text() string {
	out := ""
	for i, t := range s {
		if i > 0 {
			out += " "
		}
		out += t.Text
	}
	return out
}
