package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/framelab/scenic/pkg/domain"
)

func TestHooksDriveCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnSessionStart(ctx, "s1")
	hooks.OnFrameResolved(ctx, &domain.ResolveEvent{Frames: []string{"a", "b"}})
	hooks.OnResolutionFailure(ctx, &domain.ResolveEvent{Retries: 1})
	hooks.OnRetryExhausted(ctx, &domain.ResolveEvent{Retries: 3})
	hooks.OnDefer(ctx, &domain.StackEvent{Depth: 2})
	hooks.OnTransfer(ctx, &domain.StackEvent{})
	hooks.OnComplete(ctx, "s1")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FramesResolved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolutionFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RetriesExhausted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DeferDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsTransferred))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCompleted))

	hooks.OnReturn(ctx, &domain.StackEvent{Depth: 0})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DeferDepth))
}

func TestRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
