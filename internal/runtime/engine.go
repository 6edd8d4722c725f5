// Package runtime implements the core of the dialogue engine: the
// lexical-semantic matcher, the frame resolver, and the executor state
// machine that walks scenario scripts. It is deliberately free of
// transport and persistence concerns; callers own the session state
// and hand it in for every step.
package runtime

import (
	"context"
	"log/slog"

	"github.com/framelab/scenic/internal/logging"
	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/lexicon"
	"github.com/framelab/scenic/pkg/script"
)

// Engine drives session states through their scenario scripts. It is
// stateless across calls: the registry and lexical resource are
// read-only, so one engine serves any number of concurrent sessions.
type Engine struct {
	registry *script.Registry
	matcher  *Matcher
	cfg      domain.Config
	hooks    domain.Hooks
	logger   *slog.Logger
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithConfig overrides the default tunables.
func WithConfig(cfg domain.Config) EngineOption {
	return func(e *Engine) {
		e.cfg = cfg.Normalized()
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.Hooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an executor over the loaded registry and lexical
// resource.
func NewEngine(registry *script.Registry, lex lexicon.Resource, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: registry,
		cfg:      domain.DefaultConfig(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.matcher = NewMatcher(lex, e.cfg.ClosureDepth)
	return e
}

// Turn is what one engine step hands back to the transport: the lines
// rendered during the step, in emission order.
type Turn struct {
	Prompts []string
}

// Start positions a fresh state at its entry scenario and drives it to
// the first awaiting line (or straight to completion if the script
// never asks for input).
func (e *Engine) Start(ctx context.Context, state *domain.State) (*Turn, error) {
	if _, ok := e.registry.Scenario(state.Scenario); !ok {
		return nil, domain.Scriptf(state.Scenario, "entry scenario not loaded")
	}
	e.logger.Debug("session started", "session", state.ID, "scenario", state.Scenario)
	if e.hooks.OnSessionStart != nil {
		e.hooks.OnSessionStart(ctx, state.ID)
	}
	return e.drive(ctx, state)
}

// Submit resolves an utterance against the pending line, applies the
// matched action, and advances to the next awaiting line or terminal
// state. On resolution failure the session stays put and the same line
// is re-rendered; once the retry budget is exhausted the failure is
// surfaced as a RetryExhaustedError with the session still recoverable.
func (e *Engine) Submit(ctx context.Context, state *domain.State, tokens []domain.Token) (*Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if state.Terminal() {
		return nil, domain.ErrSessionTerminal
	}

	sc, ok := e.registry.Scenario(state.Scenario)
	if !ok {
		return nil, domain.Scriptf(state.Scenario, "scenario not loaded")
	}
	line := &sc.Lines[state.Line]

	res, ok := e.resolve(state.Scenario, line, tokens)
	if !ok {
		return e.reprompt(ctx, state, line)
	}

	state.Retries = 0
	for _, inst := range res.Instances {
		state.PutFrame(inst)
	}
	if e.hooks.OnFrameResolved != nil {
		frames := make([]string, 0, len(res.Instances))
		for _, inst := range res.Instances {
			frames = append(frames, inst.Frame)
		}
		e.hooks.OnFrameResolved(ctx, &domain.ResolveEvent{
			SessionID: state.ID,
			Scenario:  state.Scenario,
			Line:      state.Line,
			Frames:    frames,
		})
	}

	if err := e.apply(ctx, state, res.Option); err != nil {
		return nil, err
	}
	return e.drive(ctx, state)
}

// Rerender renders the pending line of an awaiting session without
// consuming an utterance or advancing. Transports use it to repaint
// the question after an out-of-band notice.
func (e *Engine) Rerender(ctx context.Context, state *domain.State) (*Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if state.Terminal() {
		return nil, domain.ErrSessionTerminal
	}

	sc, ok := e.registry.Scenario(state.Scenario)
	if !ok {
		return nil, domain.Scriptf(state.Scenario, "scenario not loaded")
	}
	rendered, err := renderLine(state, sc.Lines[state.Line].Text)
	if err != nil {
		return nil, err
	}
	return &Turn{Prompts: []string{rendered}}, nil
}

// reprompt re-renders the current line verbatim after a resolution
// failure, or surfaces RetryExhausted when the budget runs out.
func (e *Engine) reprompt(ctx context.Context, state *domain.State, line *domain.Line) (*Turn, error) {
	state.Retries++
	if e.hooks.OnResolutionFailure != nil {
		e.hooks.OnResolutionFailure(ctx, &domain.ResolveEvent{
			SessionID: state.ID,
			Scenario:  state.Scenario,
			Line:      state.Line,
			Retries:   state.Retries,
		})
	}
	e.logger.Debug("resolution failure",
		"session", state.ID, "scenario", state.Scenario, "line", state.Line, "retries", state.Retries)

	if state.Retries >= e.cfg.MaxRetries {
		attempts := state.Retries
		state.Retries = 0
		if e.hooks.OnRetryExhausted != nil {
			e.hooks.OnRetryExhausted(ctx, &domain.ResolveEvent{
				SessionID: state.ID,
				Scenario:  state.Scenario,
				Line:      state.Line,
				Retries:   attempts,
			})
		}
		return nil, &domain.RetryExhaustedError{
			Scenario: state.Scenario,
			Line:     state.Line,
			Attempts: attempts,
		}
	}

	rendered, err := renderLine(state, line.Text)
	if err != nil {
		return nil, err
	}
	return &Turn{Prompts: []string{rendered}}, nil
}

// apply executes the matched option's action and transfer flag.
func (e *Engine) apply(ctx context.Context, state *domain.State, opt domain.ResponseOption) error {
	if opt.Transfer {
		// Transfer is sticky and clears the stack: nothing below this
		// point will ever be returned to.
		state.Transferred = true
		state.Stack = nil
		if e.hooks.OnTransfer != nil {
			e.hooks.OnTransfer(ctx, &domain.StackEvent{
				SessionID: state.ID,
				From:      state.Scenario,
				To:        opt.Action.Target,
			})
		}
		e.logger.Debug("session transferred", "session", state.ID, "from", state.Scenario)
	}

	switch opt.Action.Kind {
	case domain.ActionDefer:
		if !opt.Transfer {
			if len(state.Stack) >= e.cfg.MaxStackDepth {
				return domain.Scriptf(state.Scenario,
					"defer stack exceeded %d frames; runaway defer cycle", e.cfg.MaxStackDepth)
			}
			state.Push(state.Scenario, state.Line+1)
			if e.hooks.OnDefer != nil {
				e.hooks.OnDefer(ctx, &domain.StackEvent{
					SessionID: state.ID,
					From:      state.Scenario,
					To:        opt.Action.Target,
					Depth:     len(state.Stack),
				})
			}
		}
		e.logger.Debug("defer", "session", state.ID, "from", state.Scenario, "to", opt.Action.Target, "transfer", opt.Transfer)
		state.Scenario = opt.Action.Target
		state.Line = 0
	default:
		// continue, and the implicit empty action, advance in place.
		state.Line++
	}
	return nil
}

// drive renders lines from the current position, auto-advancing through
// lines with no response options, popping completed scenarios, until it
// either suspends at an awaiting line or reaches a terminal status.
func (e *Engine) drive(ctx context.Context, state *domain.State) (*Turn, error) {
	turn := &Turn{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sc, ok := e.registry.Scenario(state.Scenario)
		if !ok {
			return nil, domain.Scriptf(state.Scenario, "scenario not loaded")
		}

		if state.Line >= len(sc.Lines) {
			if done := e.finishScenario(ctx, state); done {
				return turn, nil
			}
			continue
		}

		line := &sc.Lines[state.Line]
		rendered, err := renderLine(state, line.Text)
		if err != nil {
			return nil, err
		}
		turn.Prompts = append(turn.Prompts, rendered)
		if e.hooks.OnLineRender != nil {
			e.hooks.OnLineRender(ctx, &domain.LineEvent{
				SessionID: state.ID,
				Scenario:  state.Scenario,
				Line:      state.Line,
				Rendered:  rendered,
			})
		}

		if len(line.Responses) == 0 {
			state.Line++
			continue
		}

		state.Status = domain.StatusAwaiting
		return turn, nil
	}
}

// finishScenario handles running off the end of a line sequence:
// return to the caller scenario, or terminate the session. Reports
// true when the session reached a terminal status.
func (e *Engine) finishScenario(ctx context.Context, state *domain.State) bool {
	// A transferred session never pops; the stack is already empty and
	// stays that way.
	if !state.Transferred {
		if top, ok := state.Pop(); ok {
			e.logger.Debug("return", "session", state.ID, "from", state.Scenario, "to", top.Scenario, "line", top.ReturnLine)
			from := state.Scenario
			state.Scenario = top.Scenario
			state.Line = top.ReturnLine
			if e.hooks.OnReturn != nil {
				e.hooks.OnReturn(ctx, &domain.StackEvent{
					SessionID: state.ID,
					From:      from,
					To:        top.Scenario,
					Depth:     len(state.Stack),
				})
			}
			return false
		}
	}

	if state.Transferred {
		state.Status = domain.StatusTransferred
	} else {
		state.Status = domain.StatusCompleted
		if e.hooks.OnComplete != nil {
			e.hooks.OnComplete(ctx, state.ID)
		}
	}
	e.logger.Debug("session finished", "session", state.ID, "status", state.Status)
	return true
}

// Config exposes the engine's effective configuration.
func (e *Engine) Config() domain.Config {
	return e.cfg
}

// Registry exposes the loaded script registry.
func (e *Engine) Registry() *script.Registry {
	return e.registry
}
