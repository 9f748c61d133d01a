package policy

import (
	"errors"
	"fmt"
)

// ErrPolicyNotFound indicates a lender id is not present in the store.
var ErrPolicyNotFound = errors.New("policy not found")

// LoadError represents an error that occurred while loading a policy file:
// file system failures, size or encoding violations, or YAML syntax errors.
type LoadError struct {
	// FilePath is the path to the file that failed to load.
	FilePath string

	// LenderID is the lender id derived from the filename, if known.
	LenderID string

	// Message describes the error.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load policy %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load policy %q: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a structural or semantic problem in a parsed
// policy. Policies with validation errors never reach the matching engine.
type ValidationError struct {
	// LenderID is the id of the policy that failed validation.
	LenderID string

	// FieldPath locates the offending field (e.g. "programs[2].criteria.term_matrix").
	FieldPath string

	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.FieldPath != "" {
		return fmt.Sprintf("policy %q: %s: %s", e.LenderID, e.FieldPath, e.Message)
	}
	return fmt.Sprintf("policy %q: %s", e.LenderID, e.Message)
}

// ValidationErrors aggregates every validation problem found in one policy
// so callers can report all of them at once.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d validation errors (first: %s)", len(e), e[0].Error())
}
