package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framelab/scenic/pkg/adapters/memory"
	"github.com/framelab/scenic/pkg/domain"
)

func callerState(id string) *domain.State {
	state := domain.NewState(id, "reception")
	caller := domain.NewInstance("caller")
	caller.Fields["name"] = "John"
	caller.Fields["phone"] = "555-123-4567"
	state.PutFrame(caller)
	visit := domain.NewInstance("visit")
	visit.Fields["reason"] = "checkup"
	state.PutFrame(visit)
	return state
}

func TestRedact_MasksMatchingFields(t *testing.T) {
	backing := memory.NewStore()
	redact, err := NewRedact(`^caller\.`)
	require.NoError(t, err)
	store := Wrap(backing, redact)
	ctx := context.Background()

	state := callerState("s1")
	require.NoError(t, store.Save(ctx, state))

	// The session keeps the real values in memory.
	v, _ := state.FrameValue("caller", "name")
	assert.Equal(t, "John", v)

	// The persisted copy is masked, other frames untouched.
	stored, err := backing.Load(ctx, "s1")
	require.NoError(t, err)
	v, _ = stored.FrameValue("caller", "name")
	assert.Equal(t, Mask, v)
	v, _ = stored.FrameValue("caller", "phone")
	assert.Equal(t, Mask, v)
	v, _ = stored.FrameValue("visit", "reason")
	assert.Equal(t, "checkup", v)
}

func TestRedact_FieldPattern(t *testing.T) {
	backing := memory.NewStore()
	redact, err := NewRedact(`\.phone$`)
	require.NoError(t, err)
	store := Wrap(backing, redact)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, callerState("s1")))

	stored, err := backing.Load(ctx, "s1")
	require.NoError(t, err)
	v, _ := stored.FrameValue("caller", "phone")
	assert.Equal(t, Mask, v)
	v, _ = stored.FrameValue("caller", "name")
	assert.Equal(t, "John", v)
}

func TestRedact_PassthroughOperations(t *testing.T) {
	backing := memory.NewStore()
	redact, err := NewRedact(`^caller\.`)
	require.NoError(t, err)
	store := Wrap(backing, redact)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, callerState("s1")))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedact_BadPattern(t *testing.T) {
	_, err := NewRedact("(unclosed")
	assert.Error(t, err)
}
