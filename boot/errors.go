package boot

import (
	"errors"
)

var (
	// ErrNegativeOffset is returned seeking before the start of a [SubRange].
	ErrNegativeOffset = errors.New("seek before start of range")
	// ErrOffsetRange is returned for a payload offset beyond the start of the host binary.
	ErrOffsetRange = errors.New("payload offset exceeds host binary size")
	// ErrReentrant is returned entering a stage already in progress.
	ErrReentrant = errors.New("reentrant invocation")
	// ErrPreprocess is returned when the interpreter requests source preprocessing of an embedded payload.
	ErrPreprocess = errors.New("source preprocessing is not available for an embedded payload")
	// ErrNoChannel is returned when the preamble did not open the payload channel.
	ErrNoChannel = errors.New("payload channel was never opened")
	// ErrEmptyArgv is returned splicing a zero length argument vector.
	ErrEmptyArgv = errors.New("argument vector is empty")
)

// StartupError is a fatal error encountered during startup.
type StartupError struct {
	// Step is a short description of the failed step.
	Step string
	// Err is the underlying error.
	Err error
}

func (e *StartupError) Unwrap() error { return e.Err }
func (e *StartupError) Error() string { return "cannot " + e.Step + ": " + e.Err.Error() }

// Message returns a user-facing error message.
func (e *StartupError) Message() string { return e.Error() }

// EntryError is returned when the embedded archive has no entry of the configured name.
type EntryError struct {
	// Name of the missing entry.
	Name string
	// Archive is the name of the executable holding the archive.
	Archive string
}

func (e *EntryError) Error() string {
	return "archive entry " + e.Name + " not found in " + e.Archive
}

// StateError is returned attempting a transition to a state not following the current state.
type StateError struct{ From, To State }

func (e *StateError) Error() string {
	return "transition from " + e.From.String() + " to " + e.To.String()
}
