package inventory

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by errors returned when the raffle or its ticket
// set does not exist on the remote service.
var ErrNotFound = errors.New("not found")

// ErrClosed is returned by operations that were started, or completed,
// after the Manager was closed.  Their results are discarded.
var ErrClosed = errors.New("inventory: manager closed")

// ErrNotLoaded is returned by write operations issued before a raffle
// snapshot has been loaded.
var ErrNotLoaded = errors.New("inventory: no raffle loaded")

// ValidationError is a local precondition failure.  It never reaches the
// network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// RemoteError wraps any transport failure or non-2xx response from the
// remote service.  StatusCode is zero for transport failures.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: remote returned %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: remote returned %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": remote error"
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRemote reports whether err is (or wraps) a *RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// asRemote normalizes an error returned by a Remote.  Not-found errors
// and existing RemoteErrors pass through; anything else is wrapped.
func asRemote(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || IsRemote(err) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}
