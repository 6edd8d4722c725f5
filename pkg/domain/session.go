package domain

// ExecutionStatus defines the current mode of the session state machine.
type ExecutionStatus string

const (
	// StatusAwaiting means the session is suspended at a line, waiting
	// for a caller utterance.
	StatusAwaiting ExecutionStatus = "awaiting"
	// StatusCompleted means the entry scenario (and the whole defer
	// stack) ran to completion.
	StatusCompleted ExecutionStatus = "completed"
	// StatusTransferred means the session was handed off externally.
	StatusTransferred ExecutionStatus = "transferred"
)

// StackFrame records where control returns after a deferred scenario
// completes.
type StackFrame struct {
	Scenario   string `json:"scenario"`
	ReturnLine int    `json:"return_line"`
}

// State is the full snapshot of one conversation session. It is owned
// by exactly one session and never shared; everything in it serializes
// cleanly for the session store adapters.
type State struct {
	// ID is the session identifier.
	ID string `json:"id"`

	// Scenario and Line locate the pending utterance: the session is
	// suspended at Lines[Line] of Scenario while Status == StatusAwaiting.
	Scenario string `json:"scenario"`
	Line     int    `json:"line"`

	Status ExecutionStatus `json:"status"`

	// Stack holds the defer return points, innermost last.
	Stack []StackFrame `json:"stack,omitempty"`

	// Frames is the session frame store: latest filled instance per
	// frame name, last-write-wins.
	Frames map[string]*Instance `json:"frames"`

	// Retries counts consecutive resolution failures on the current line.
	Retries int `json:"retries"`

	// Transferred is sticky: once set, scenario completion never pops
	// the stack, even while a deferred scenario keeps running.
	Transferred bool `json:"transferred"`
}

// NewState creates a clean session positioned at the first line of the
// entry scenario.
func NewState(id, entryScenario string) *State {
	return &State{
		ID:       id,
		Scenario: entryScenario,
		Line:     0,
		Status:   StatusAwaiting,
		Frames:   make(map[string]*Instance),
	}
}

// Terminal reports whether the engine has stopped driving this session.
func (s *State) Terminal() bool {
	return s.Status != StatusAwaiting
}

// PutFrame stores a filled instance, overwriting any prior instance of
// the same frame name.
func (s *State) PutFrame(inst *Instance) {
	if s.Frames == nil {
		s.Frames = make(map[string]*Instance)
	}
	s.Frames[inst.Frame] = inst
}

// FrameValue reads a field of the latest instance of the named frame.
// The second return is false when the frame was never filled or the
// field is absent.
func (s *State) FrameValue(frame, field string) (string, bool) {
	inst, ok := s.Frames[frame]
	if !ok {
		return "", false
	}
	v, ok := inst.Fields[field]
	return v, ok
}

// Push records a defer return point.
func (s *State) Push(scenario string, returnLine int) {
	s.Stack = append(s.Stack, StackFrame{Scenario: scenario, ReturnLine: returnLine})
}

// Pop removes and returns the innermost return point.
func (s *State) Pop() (StackFrame, bool) {
	if len(s.Stack) == 0 {
		return StackFrame{}, false
	}
	top := s.Stack[len(s.Stack)-1]
	s.Stack = s.Stack[:len(s.Stack)-1]
	return top, true
}

// Clone returns a deep copy of the state, isolating stored snapshots
// from later mutation.
func (s *State) Clone() *State {
	c := *s
	c.Stack = append([]StackFrame(nil), s.Stack...)
	c.Frames = make(map[string]*Instance, len(s.Frames))
	for k, v := range s.Frames {
		c.Frames[k] = v.Clone()
	}
	return &c
}
