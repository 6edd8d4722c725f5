// Package ports defines the interfaces between the engine core and its
// pluggable collaborators: session persistence and the caller-facing
// transport contract.
package ports

import (
	"context"

	"github.com/framelab/scenic/pkg/domain"
)

// SessionStore persists session state between utterances. Adapters must
// isolate stored snapshots from later mutation by the caller.
type SessionStore interface {
	// Save persists the state under its session ID.
	Save(ctx context.Context, state *domain.State) error

	// Load retrieves a session's state.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete discards a session. Deleting an unknown session is a no-op.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}
