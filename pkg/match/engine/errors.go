package engine

import "fmt"

// ConfigurationError reports a policy or registry problem discovered during
// evaluation, such as a criterion with no registered rule. It marks a bad
// lender configuration, not a bad application.
type ConfigurationError struct {
	// LenderID and ProgramID locate the offending configuration.
	LenderID  string
	ProgramID string

	// Message describes the problem.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("lender %q", e.LenderID)
	if e.ProgramID != "" {
		msg += fmt.Sprintf(" program %q", e.ProgramID)
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
