package preview

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFile is returned by Select when no file content was given.
	ErrNoFile = errors.New("no file selected")

	// ErrNothingToConfirm is returned by Confirm unless the form holds a
	// parsed file with at least one row.
	ErrNothingToConfirm = errors.New("nothing to confirm")
)

// ParseError reports a file that could not be decoded locally. The form
// shows no rows after it.
type ParseError struct {
	FileName string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.FileName, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransportError reports a failed upload: the request could not be sent,
// the server answered with a non-2xx status, or the answer was unreadable.
// StatusCode is 0 when no response arrived.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload to %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("upload to %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }
