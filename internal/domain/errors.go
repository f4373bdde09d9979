package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates a referenced issue, project or configuration
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRelationship covers self-links, parent cycles, duplicate
	// links and ineligible type pairings.
	ErrInvalidRelationship = errors.New("invalid relationship")

	// ErrIllegalTransition indicates a status outside the issue type's workflow.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrInvalidInput marks malformed requests: missing fields, unknown enum
	// values, invalid configuration.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError builds an ErrInvalidInput with context.
func InputError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// RelationshipError builds an ErrInvalidRelationship with context.
func RelationshipError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRelationship, fmt.Sprintf(format, args...))
}

// TransitionError is the structured rejection for a status change. Reason
// enumerates the legal set so callers can render an actionable message.
type TransitionError struct {
	IssueType     string
	Status        string
	ValidStatuses []string
}

// NewTransitionError creates a TransitionError for the given rejection.
func NewTransitionError(issueType, status string, valid []string) *TransitionError {
	return &TransitionError{IssueType: issueType, Status: status, ValidStatuses: valid}
}

// Reason returns the user-facing rejection message.
func (e *TransitionError) Reason() string {
	return TransitionReason(e.IssueType, e.Status, e.ValidStatuses)
}

func (e *TransitionError) Error() string {
	return ErrIllegalTransition.Error() + ": " + e.Reason()
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// TransitionReason formats the rejection reason shared by the validator and
// TransitionError.
func TransitionReason(issueType, status string, valid []string) string {
	return fmt.Sprintf("%s cannot transition to %s; valid statuses: %s",
		issueType, status, strings.Join(valid, ", "))
}
