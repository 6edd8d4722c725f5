package domain

// ActionKind constants define what happens after a response option is matched.
const (
	// ActionContinue advances to the next line of the current scenario.
	ActionContinue = "continue"
	// ActionDefer pushes the current position and switches to a sub-scenario.
	ActionDefer = "defer"
	// ActionNone is the implicit action of a line with no explicit directive.
	ActionNone = ""
)

// Action describes the control-flow directive attached to a response option.
type Action struct {
	Kind string `json:"kind" yaml:"kind"`
	// Target names the scenario to defer to. Only set when Kind == ActionDefer.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// ResponseOption is one acceptable response shape on a line: a set of
// frames that must all fill completely, plus the action to take when
// they do. Options are tried in declaration order.
type ResponseOption struct {
	// Frames lists the frame names this option expects. Every listed
	// frame must fill every one of its fields for the option to match.
	Frames []string `json:"frames" yaml:"frames"`

	Action Action `json:"action" yaml:"action"`

	// Transfer marks the session as externally handed off once this
	// option matches. Orthogonal to Action: a deferred scenario still
	// runs to completion, but control never returns to the caller.
	Transfer bool `json:"transfer,omitempty" yaml:"transfer,omitempty"`
}

// Line is one bot utterance plus the response shapes it accepts.
// A line with no response options auto-advances after rendering.
type Line struct {
	// Text is the utterance template. $frame.field references are
	// substituted from the session frame store at render time.
	Text string `json:"text" yaml:"text"`

	Responses []ResponseOption `json:"responses,omitempty" yaml:"responses,omitempty"`
}

// Scenario is a named, ordered dialogue script: its lines plus the
// frame definitions local to it. Immutable once loaded.
type Scenario struct {
	Name  string `json:"name" yaml:"name"`
	Lines []Line `json:"lines" yaml:"lines"`

	// Frames maps frame name to definition for frames declared inside
	// this scenario. Globally shared frames live in the registry.
	Frames map[string]*Frame `json:"frames" yaml:"frames"`
}

// Frame returns the named frame definition from the scenario's local
// set, or nil if the scenario does not declare it.
func (s *Scenario) Frame(name string) *Frame {
	if s.Frames == nil {
		return nil
	}
	return s.Frames[name]
}
