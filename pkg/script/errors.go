package script

import "fmt"

// AggregateError collects every script defect found during a load so
// authors see all of them at once instead of fixing one per run.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d script errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is / errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}
