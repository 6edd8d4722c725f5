package scenic

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/framelab/scenic/pkg/domain"
)

// Tagger turns raw utterance text into POS-tagged tokens. Production
// transports receive tokens from the telephony pipeline; the CLI uses
// the static lexicon's tagger.
type Tagger func(text string) []domain.Token

// ContentRenderer transforms a prompt before it is written, e.g. for
// markdown-to-ANSI rendering in a terminal.
type ContentRenderer func(string) (string, error)

// Runner drives one interactive session over plain reader/writer IO.
// The loop suspends on every awaiting line until a caller utterance
// arrives, mirroring how a telephony transport would drive the engine.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Tagger   Tagger
	Renderer ContentRenderer
}

// Run executes a session from entryScenario until the session becomes
// terminal, input reaches EOF, or the context is canceled. The session
// is torn down on abnormal exit.
func (r *Runner) Run(ctx context.Context, engine *Engine, entryScenario string) error {
	if r.Input == nil || r.Output == nil {
		return fmt.Errorf("runner input and output must be set")
	}
	if r.Tagger == nil {
		return fmt.Errorf("runner tagger must be set")
	}
	reader := bufio.NewReader(r.Input)

	turn, err := engine.Start(ctx, "", entryScenario)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	sessionID := turn.SessionID

	for {
		r.emit(turn.Prompts)

		if turn.Status != domain.StatusAwaiting {
			fmt.Fprintf(r.Output, "[session %s]\n", turn.Status)
			return nil
		}

		fmt.Fprint(r.Output, "> ")
		raw, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return engine.Teardown(ctx, sessionID)
			}
			return fmt.Errorf("read utterance: %w", err)
		}
		raw = strings.TrimSpace(raw)
		if raw == "exit" || raw == "quit" {
			return engine.Teardown(ctx, sessionID)
		}

		turn, err = engine.Submit(ctx, sessionID, r.Tagger(raw))
		if err != nil {
			var exhausted *domain.RetryExhaustedError
			if errors.As(err, &exhausted) {
				fmt.Fprintf(r.Output, "[still not following after %d tries; let's keep going]\n", exhausted.Attempts)
				// Repaint the question so the caller is not answering
				// a line that scrolled away.
				turn, err = engine.Rerender(ctx, sessionID)
				if err != nil {
					return err
				}
				continue
			}
			return err
		}
	}
}

func (r *Runner) emit(prompts []string) {
	for _, p := range prompts {
		out := p
		if r.Renderer != nil {
			if rendered, err := r.Renderer(p); err == nil {
				out = rendered
			}
		}
		fmt.Fprintln(r.Output, strings.TrimSpace(out))
	}
}
