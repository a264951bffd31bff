package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrLessonArchived = errors.New("lesson is archived")
)

// ValidationError is returned when caller-supplied data fails a structural
// or format rule. Always recoverable by correcting the input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// SlugConflictError is returned when a tenant slug is already in use.
type SlugConflictError struct {
	Slug string
}

func (e *SlugConflictError) Error() string {
	return fmt.Sprintf("slug %q already exists", e.Slug)
}

// VersionConflictError is returned when an edit's expected version no longer
// matches the stored lesson. Recoverable by retrying against fresh data.
type VersionConflictError struct {
	LessonID        string
	ExpectedVersion int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("lesson %q is no longer at version %d", e.LessonID, e.ExpectedVersion)
}

// TransitionError is returned when a publication state change is not allowed.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition from %q to %q is not allowed", e.From, e.To)
}
