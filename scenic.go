package scenic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/framelab/scenic/internal/logging"
	"github.com/framelab/scenic/internal/runtime"
	"github.com/framelab/scenic/pkg/adapters/memory"
	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/lexicon"
	"github.com/framelab/scenic/pkg/ports"
	"github.com/framelab/scenic/pkg/script"
	"github.com/framelab/scenic/pkg/session"
)

// Engine is the high-level entry point: it owns the executor, the
// session manager, and the store, and exposes the transport-facing API.
type Engine struct {
	core     *runtime.Engine
	sessions *session.Manager
	store    ports.SessionStore
	logger   *slog.Logger

	cfg   domain.Config
	hooks []domain.Hooks
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConfig overrides the default retry, closure-depth, and
// stack-depth tunables.
func WithConfig(cfg domain.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg.Normalized()
	}
}

// WithHooks registers lifecycle hooks. May be given more than once;
// all registered hook sets fire.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks)
	}
}

// WithStore replaces the default in-memory session store.
func WithStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// New builds an engine over a loaded registry and lexical resource.
func New(registry *script.Registry, lex lexicon.Resource, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if lex == nil {
		return nil, fmt.Errorf("lexical resource is required")
	}

	e := &Engine{
		cfg:    domain.DefaultConfig(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}

	e.core = runtime.NewEngine(registry, lex,
		runtime.WithConfig(e.cfg),
		runtime.WithLogger(e.logger),
		runtime.WithHooks(fanOut(e.hooks)),
	)
	e.sessions = session.NewManager(e.store, session.WithLogger(e.logger))
	return e, nil
}

// Turn is the transport-facing result of one engine step.
type Turn struct {
	SessionID string
	// Prompts are the rendered bot lines emitted during the step, in
	// order.
	Prompts []string
	Status  domain.ExecutionStatus
	// Retries is the consecutive resolution-failure count on the
	// pending line.
	Retries int
}

func makeTurn(state *domain.State, t *runtime.Turn) *Turn {
	return &Turn{
		SessionID: state.ID,
		Prompts:   t.Prompts,
		Status:    state.Status,
		Retries:   state.Retries,
	}
}

// Start creates a session at the entry scenario and drives it to its
// first awaiting line. An empty sessionID gets a generated UUID.
func (e *Engine) Start(ctx context.Context, sessionID, entryScenario string) (*Turn, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var turn *Turn
	err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := e.store.Load(ctx, sessionID); err == nil {
			return fmt.Errorf("session %q: %w", sessionID, domain.ErrSessionExists)
		} else if !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}

		state := domain.NewState(sessionID, entryScenario)
		t, err := e.core.Start(ctx, state)
		if err != nil {
			return err
		}
		if err := e.store.Save(ctx, state); err != nil {
			return err
		}
		turn = makeTurn(state, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return turn, nil
}

// Submit resolves one caller utterance for the session and advances it.
// A resolution failure re-prompts; once the retry budget is exhausted a
// *domain.RetryExhaustedError is returned with the session still live.
// Script errors abort and discard the session.
func (e *Engine) Submit(ctx context.Context, sessionID string, tokens []domain.Token) (*Turn, error) {
	var turn *Turn
	err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := e.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		t, err := e.core.Submit(ctx, state, tokens)
		if err != nil {
			var exhausted *domain.RetryExhaustedError
			if errors.As(err, &exhausted) {
				// Recoverable: persist the reset retry counter and let
				// the caller decide what to do with the conversation.
				if saveErr := e.store.Save(ctx, state); saveErr != nil {
					return saveErr
				}
				return err
			}
			var scriptErr *domain.ScriptError
			if errors.As(err, &scriptErr) {
				e.logger.Error("session aborted by script error", "session", sessionID, "err", err)
				if delErr := e.store.Delete(ctx, sessionID); delErr != nil {
					e.logger.Warn("failed to discard aborted session", "session", sessionID, "err", delErr)
				}
			}
			return err
		}

		if err := e.store.Save(ctx, state); err != nil {
			return err
		}
		turn = makeTurn(state, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return turn, nil
}

// Rerender repaints the session's pending line without consuming an
// utterance, e.g. after a retry-exhausted notice.
func (e *Engine) Rerender(ctx context.Context, sessionID string) (*Turn, error) {
	var turn *Turn
	err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := e.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		t, err := e.core.Rerender(ctx, state)
		if err != nil {
			return err
		}
		turn = makeTurn(state, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return turn, nil
}

// IsTerminal reports whether the engine has stopped driving the session.
func (e *Engine) IsTerminal(ctx context.Context, sessionID string) (bool, error) {
	state, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return state.Terminal(), nil
}

// State returns a snapshot of the session.
func (e *Engine) State(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.sessions.Load(ctx, sessionID)
}

// Teardown discards the session, e.g. when the caller hangs up while
// the engine is suspended. Other sessions are unaffected.
func (e *Engine) Teardown(ctx context.Context, sessionID string) error {
	e.logger.Debug("session teardown", "session", sessionID)
	return e.sessions.Delete(ctx, sessionID)
}

// Sessions exposes the session manager, mainly for transports.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Config returns the effective engine configuration.
func (e *Engine) Config() domain.Config {
	return e.cfg
}

// fanOut merges several hook sets into one that fires them in order.
func fanOut(sets []domain.Hooks) domain.Hooks {
	if len(sets) == 1 {
		return sets[0]
	}
	var merged domain.Hooks
	merged.OnSessionStart = func(ctx context.Context, sessionID string) {
		for _, h := range sets {
			if h.OnSessionStart != nil {
				h.OnSessionStart(ctx, sessionID)
			}
		}
	}
	merged.OnLineRender = func(ctx context.Context, ev *domain.LineEvent) {
		for _, h := range sets {
			if h.OnLineRender != nil {
				h.OnLineRender(ctx, ev)
			}
		}
	}
	merged.OnFrameResolved = func(ctx context.Context, ev *domain.ResolveEvent) {
		for _, h := range sets {
			if h.OnFrameResolved != nil {
				h.OnFrameResolved(ctx, ev)
			}
		}
	}
	merged.OnResolutionFailure = func(ctx context.Context, ev *domain.ResolveEvent) {
		for _, h := range sets {
			if h.OnResolutionFailure != nil {
				h.OnResolutionFailure(ctx, ev)
			}
		}
	}
	merged.OnRetryExhausted = func(ctx context.Context, ev *domain.ResolveEvent) {
		for _, h := range sets {
			if h.OnRetryExhausted != nil {
				h.OnRetryExhausted(ctx, ev)
			}
		}
	}
	merged.OnDefer = func(ctx context.Context, ev *domain.StackEvent) {
		for _, h := range sets {
			if h.OnDefer != nil {
				h.OnDefer(ctx, ev)
			}
		}
	}
	merged.OnReturn = func(ctx context.Context, ev *domain.StackEvent) {
		for _, h := range sets {
			if h.OnReturn != nil {
				h.OnReturn(ctx, ev)
			}
		}
	}
	merged.OnTransfer = func(ctx context.Context, ev *domain.StackEvent) {
		for _, h := range sets {
			if h.OnTransfer != nil {
				h.OnTransfer(ctx, ev)
			}
		}
	}
	merged.OnComplete = func(ctx context.Context, sessionID string) {
		for _, h := range sets {
			if h.OnComplete != nil {
				h.OnComplete(ctx, sessionID)
			}
		}
	}
	return merged
}
