package domain

import "context"

// LineEvent describes the line a hook fires for.
type LineEvent struct {
	SessionID string
	Scenario  string
	Line      int
	// Rendered is the substituted utterance text (OnLineRender only).
	Rendered string
}

// ResolveEvent describes the outcome of a frame resolution attempt.
type ResolveEvent struct {
	SessionID string
	Scenario  string
	Line      int
	// Frames lists the frame names filled by the matched option.
	// Empty on failure.
	Frames []string
	// Retries is the consecutive failure count after this attempt.
	Retries int
}

// StackEvent describes a defer push, a return pop, or a transfer.
type StackEvent struct {
	SessionID string
	// From and To name the scenarios on either side of the switch.
	From string
	To   string
	// Depth is the stack depth after the event.
	Depth int
}

// Hooks are optional observability callbacks. All fields may be nil;
// hooks run synchronously on the session's goroutine and must not block.
type Hooks struct {
	OnSessionStart      func(ctx context.Context, sessionID string)
	OnLineRender        func(ctx context.Context, e *LineEvent)
	OnFrameResolved     func(ctx context.Context, e *ResolveEvent)
	OnResolutionFailure func(ctx context.Context, e *ResolveEvent)
	OnRetryExhausted    func(ctx context.Context, e *ResolveEvent)
	OnDefer             func(ctx context.Context, e *StackEvent)
	OnReturn            func(ctx context.Context, e *StackEvent)
	OnTransfer          func(ctx context.Context, e *StackEvent)
	OnComplete          func(ctx context.Context, sessionID string)
}
