// Package apperr defines the error taxonomy shared by services and
// controllers. Services wrap these sentinels with context via fmt.Errorf
// and %w; controllers map them to HTTP statuses with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound signals that a referenced attempt, exam or question
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals an invalid state transition, e.g. submitting
	// an attempt that is no longer in progress.
	ErrConflict = errors.New("conflict")

	// ErrForbidden signals that the requesting user lacks the role the
	// operation requires.
	ErrForbidden = errors.New("forbidden")
)
