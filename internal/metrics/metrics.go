// Package metrics exposes the engine's Prometheus instrumentation. It
// plugs into the engine through domain.Hooks so the runtime itself
// stays free of metrics dependencies.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/framelab/scenic/pkg/domain"
)

// Metrics holds the collectors for one engine instance.
type Metrics struct {
	SessionsStarted     prometheus.Counter
	SessionsCompleted   prometheus.Counter
	SessionsTransferred prometheus.Counter
	FramesResolved      prometheus.Counter
	ResolutionFailures  prometheus.Counter
	RetriesExhausted    prometheus.Counter
	DeferDepth          prometheus.Gauge
}

// New creates and registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scenic", Name: "sessions_started_total",
			Help: "Sessions created.",
		}),
		SessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scenic", Name: "sessions_completed_total",
			Help: "Sessions that ran their scenario stack to completion.",
		}),
		SessionsTransferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scenic", Name: "sessions_transferred_total",
			Help: "Sessions handed off externally.",
		}),
		FramesResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scenic", Name: "frames_resolved_total",
			Help: "Frame instances extracted from utterances.",
		}),
		ResolutionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scenic", Name: "resolution_failures_total",
			Help: "Utterances matching no declared frame.",
		}),
		RetriesExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scenic", Name: "retries_exhausted_total",
			Help: "Lines that hit the retry budget.",
		}),
		DeferDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scenic", Name: "defer_depth",
			Help: "Defer stack depth observed on the most recent push or pop.",
		}),
	}
	reg.MustRegister(
		m.SessionsStarted, m.SessionsCompleted, m.SessionsTransferred,
		m.FramesResolved, m.ResolutionFailures, m.RetriesExhausted,
		m.DeferDepth,
	)
	return m
}

// Hooks adapts the collectors to the engine's lifecycle hooks.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnSessionStart: func(ctx context.Context, sessionID string) {
			m.SessionsStarted.Inc()
		},
		OnFrameResolved: func(ctx context.Context, e *domain.ResolveEvent) {
			m.FramesResolved.Add(float64(len(e.Frames)))
		},
		OnResolutionFailure: func(ctx context.Context, e *domain.ResolveEvent) {
			m.ResolutionFailures.Inc()
		},
		OnRetryExhausted: func(ctx context.Context, e *domain.ResolveEvent) {
			m.RetriesExhausted.Inc()
		},
		OnDefer: func(ctx context.Context, e *domain.StackEvent) {
			m.DeferDepth.Set(float64(e.Depth))
		},
		OnReturn: func(ctx context.Context, e *domain.StackEvent) {
			m.DeferDepth.Set(float64(e.Depth))
		},
		OnTransfer: func(ctx context.Context, e *domain.StackEvent) {
			m.SessionsTransferred.Inc()
		},
		OnComplete: func(ctx context.Context, sessionID string) {
			m.SessionsCompleted.Inc()
		},
	}
}
