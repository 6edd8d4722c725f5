// Package scenic is a frame-based dialogue execution engine driven by
// declarative scenario scripts.
//
// A scenario is an ordered sequence of bot lines; each line offers a
// set of acceptable response shapes called frames. For every line the
// engine renders templated text from previously captured knowledge,
// takes a caller utterance, decides which frame it satisfies through
// lexical, semantic, and pattern matching, extracts the field values,
// and applies the matched action: continue in place, defer to a
// sub-scenario and return later, or transfer the call away entirely.
//
// The root package wires the pieces together:
//
//	reg, err := script.LoadDir("scripts")
//	lex, err := lexicon.Load("lexicon.yaml")
//	eng, err := scenic.New(reg, lex)
//
//	turn, err := eng.Start(ctx, "", "reception")
//	turn, err = eng.Submit(ctx, turn.SessionID, tokens)
//
// Sessions are independent sequential state machines; the loaded
// scripts and the lexical resource are immutable and shared. Session
// state lives behind a pluggable store (in-memory by default, Redis
// under pkg/adapters/redis).
package scenic
