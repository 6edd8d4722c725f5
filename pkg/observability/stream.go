package observability

import (
	"context"
	"time"

	"github.com/framelab/scenic/pkg/domain"
)

// Kind identifies the lifecycle moment an Event records.
type Kind string

const (
	KindSessionStart      Kind = "session_start"
	KindLineRender        Kind = "line_render"
	KindFrameResolved     Kind = "frame_resolved"
	KindResolutionFailure Kind = "resolution_failure"
	KindRetryExhausted    Kind = "retry_exhausted"
	KindDefer             Kind = "defer"
	KindReturn            Kind = "return"
	KindTransfer          Kind = "transfer"
	KindComplete          Kind = "complete"
)

// Event is one lifecycle occurrence with the hook payloads flattened
// into a single shape that serializes cleanly.
type Event struct {
	Kind      Kind      `json:"kind"`
	SessionID string    `json:"session_id"`
	Scenario  string    `json:"scenario,omitempty"`
	Line      int       `json:"line,omitempty"`
	Rendered  string    `json:"rendered,omitempty"`
	Frames    []string  `json:"frames,omitempty"`
	Retries   int       `json:"retries,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Depth     int       `json:"depth,omitempty"`
	At        time.Time `json:"at"`
}

// Stream converts hook callbacks into a channel of Events. Hooks must
// not block the session goroutine, so a send on a full buffer drops
// the event instead of waiting.
type Stream struct {
	ch chan Event
}

// NewStream creates a stream. A non-positive buffer gets a default
// of 64.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = 64
	}
	return &Stream{ch: make(chan Event, buffer)}
}

// Events is the receive side of the stream.
func (s *Stream) Events() <-chan Event { return s.ch }

// Close ends the stream. The engine must not fire the stream's hooks
// after Close.
func (s *Stream) Close() { close(s.ch) }

func (s *Stream) emit(e Event) {
	e.At = time.Now()
	select {
	case s.ch <- e:
	default:
	}
}

// Hooks returns the hook set feeding this stream. Register it with
// the engine via WithHooks.
func (s *Stream) Hooks() domain.Hooks {
	return domain.Hooks{
		OnSessionStart: func(_ context.Context, sessionID string) {
			s.emit(Event{Kind: KindSessionStart, SessionID: sessionID})
		},
		OnLineRender: func(_ context.Context, e *domain.LineEvent) {
			s.emit(Event{Kind: KindLineRender, SessionID: e.SessionID, Scenario: e.Scenario, Line: e.Line, Rendered: e.Rendered})
		},
		OnFrameResolved: func(_ context.Context, e *domain.ResolveEvent) {
			s.emit(Event{Kind: KindFrameResolved, SessionID: e.SessionID, Scenario: e.Scenario, Line: e.Line, Frames: e.Frames})
		},
		OnResolutionFailure: func(_ context.Context, e *domain.ResolveEvent) {
			s.emit(Event{Kind: KindResolutionFailure, SessionID: e.SessionID, Scenario: e.Scenario, Line: e.Line, Retries: e.Retries})
		},
		OnRetryExhausted: func(_ context.Context, e *domain.ResolveEvent) {
			s.emit(Event{Kind: KindRetryExhausted, SessionID: e.SessionID, Scenario: e.Scenario, Line: e.Line, Retries: e.Retries})
		},
		OnDefer: func(_ context.Context, e *domain.StackEvent) {
			s.emit(Event{Kind: KindDefer, SessionID: e.SessionID, From: e.From, To: e.To, Depth: e.Depth})
		},
		OnReturn: func(_ context.Context, e *domain.StackEvent) {
			s.emit(Event{Kind: KindReturn, SessionID: e.SessionID, From: e.From, To: e.To, Depth: e.Depth})
		},
		OnTransfer: func(_ context.Context, e *domain.StackEvent) {
			s.emit(Event{Kind: KindTransfer, SessionID: e.SessionID, From: e.From, To: e.To, Depth: e.Depth})
		},
		OnComplete: func(_ context.Context, sessionID string) {
			s.emit(Event{Kind: KindComplete, SessionID: sessionID})
		},
	}
}
