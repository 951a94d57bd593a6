package services

import (
	"errors"
	"fmt"
)

// Sentinels matched by the concrete error types below via errors.Is.
var (
	ErrMissingField   = errors.New("missing field")
	ErrMalformedRow   = errors.New("malformed row")
	ErrDivisionByZero = errors.New("division by zero")
	ErrEmptyInput     = errors.New("empty input")
	ErrSnapshotName   = errors.New("invalid snapshot name")

	// ErrOutOfOrder is returned when a price is observed for a date earlier
	// than the room's latest observation.
	ErrOutOfOrder = errors.New("snapshot out of chronological order")
	// ErrSeriesSealed is returned when observing into a builder whose series
	// have already been handed out.
	ErrSeriesSealed = errors.New("series builder is sealed")
)

// MissingFieldError reports a required column absent from a snapshot header.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("missing field %q in header", e.Field)
	}
	return fmt.Sprintf("%s: missing field %q in header", e.Path, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// MalformedRowError reports a row of the right width whose value could not be
// converted to the field's type.
type MalformedRowError struct {
	Path  string
	Line  int
	Field string
	Value string
	Err   error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s:%d: malformed %s %q: %v", e.Path, e.Line, e.Field, e.Value, e.Err)
}

func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

func (e *MalformedRowError) Unwrap() error { return e.Err }

// DivisionByZeroError reports a price series starting at zero.
type DivisionByZeroError struct {
	RoomID int64
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("room %d: starting price is zero, percent change is undefined", e.RoomID)
}

func (e *DivisionByZeroError) Is(target error) bool { return target == ErrDivisionByZero }

// EmptyInputError reports a run with nothing to analyse.
type EmptyInputError struct {
	Reason string
}

func (e *EmptyInputError) Error() string {
	return "empty input: " + e.Reason
}

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// SnapshotNameError reports a file name without a valid YYYY-MM-DD token
// in its date position.
type SnapshotNameError struct {
	Name  string
	Token string
	Err   error
}

func (e *SnapshotNameError) Error() string {
	msg := fmt.Sprintf("snapshot %q: date token %q is not YYYY-MM-DD", e.Name, e.Token)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SnapshotNameError) Is(target error) bool { return target == ErrSnapshotName }

func (e *SnapshotNameError) Unwrap() error { return e.Err }
