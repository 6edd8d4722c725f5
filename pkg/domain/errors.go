package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when starting a session under an ID that
// is already live.
var ErrSessionExists = errors.New("session already exists")

// ErrSessionTerminal is returned when an utterance is submitted to a
// completed or transferred session.
var ErrSessionTerminal = errors.New("session is terminal")

// ScriptError reports a defect in a scenario script. Script errors are
// fatal: they abort loading, or abort the session when only detectable
// at run time (e.g. a template referencing a never-filled frame).
type ScriptError struct {
	Scenario string
	Detail   string
}

func (e *ScriptError) Error() string {
	if e.Scenario == "" {
		return fmt.Sprintf("script error: %s", e.Detail)
	}
	return fmt.Sprintf("script error in scenario %q: %s", e.Scenario, e.Detail)
}

// Scriptf builds a ScriptError with a formatted detail.
func Scriptf(scenario, format string, args ...any) *ScriptError {
	return &ScriptError{Scenario: scenario, Detail: fmt.Sprintf(format, args...)}
}

// RetryExhaustedError surfaces N consecutive resolution failures on the
// same line. The session stays loaded; the policy for what happens next
// belongs to the external caller.
type RetryExhaustedError struct {
	Scenario string
	Line     int
	Attempts int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("no frame matched after %d attempts at %s:%d", e.Attempts, e.Scenario, e.Line)
}
