package notion

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned by every remote operation when the
	// client holds no token. No request is made.
	ErrUnauthenticated = errors.New("no API token provided")

	// ErrNoPageSelected is returned by SaveCurrentPage when no page has been selected.
	ErrNoPageSelected = errors.New("no page selected")
)

// TransportError reports a failure of the HTTP exchange itself: the request
// could not be sent, the body could not be read, or Notion answered with a
// non-2xx status. For status failures Err is the decoded *notionapi.Error
// when the response carried one.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a response whose shape cannot produce a result,
// such as a body that is not JSON or a results field that is not an array.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
