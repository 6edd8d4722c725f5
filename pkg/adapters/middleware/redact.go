package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/ports"
)

// Mask replaces redacted frame-store values at rest.
const Mask = "***"

type redactStore struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewRedact builds a middleware that masks frame-store values before
// they reach the underlying store. A pattern is matched against the
// "frame.field" key of every extracted value, so "caller\..*" hides
// everything filled into the caller frame and "\.phone$" hides phone
// fields everywhere. The in-memory state driving the session keeps
// the real values; only the persisted copy is masked.
func NewRedact(patterns ...string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactStore{next: next, patterns: compiled}
	}, nil
}

func (s *redactStore) Save(ctx context.Context, state *domain.State) error {
	// Clone before masking: the caller's state keeps driving the
	// session with the real values.
	masked := state.Clone()
	for name, inst := range masked.Frames {
		for field := range inst.Fields {
			if s.matches(name + "." + field) {
				inst.Fields[field] = Mask
			}
		}
	}
	return s.next.Save(ctx, masked)
}

func (s *redactStore) matches(key string) bool {
	for _, re := range s.patterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

func (s *redactStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return s.next.Load(ctx, sessionID)
}

func (s *redactStore) Delete(ctx context.Context, sessionID string) error {
	return s.next.Delete(ctx, sessionID)
}

func (s *redactStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}
