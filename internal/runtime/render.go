package runtime

import (
	"github.com/framelab/scenic/pkg/domain"
	"github.com/framelab/scenic/pkg/script"
)

// renderLine substitutes every $frame.field reference from the session
// frame store. Referencing a frame that was never filled is a script
// error and aborts the session; templates never silently blank out.
func renderLine(state *domain.State, text string) (string, error) {
	out, missing, ok := script.ExpandTemplate(text, func(frame, field string) (string, bool) {
		return state.FrameValue(frame, field)
	})
	if !ok {
		return "", domain.Scriptf(state.Scenario,
			"line %d references $%s.%s, but frame %q holds no value for it",
			state.Line, missing[0], missing[1], missing[0])
	}
	return out, nil
}
