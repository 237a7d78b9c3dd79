package catalog

import (
	"errors"
	"fmt"
)

// Failure kinds. A *RequestError wraps exactly one of them.
var (
	ErrTransport = errors.New("catalog unreachable")
	ErrStatus    = errors.New("unexpected catalog status")
	ErrDecode    = errors.New("invalid catalog response")
)

// RequestError describes a failed catalog call.
type RequestError struct {
	Op         string // "list games", "get game"
	StatusCode int    // set for ErrStatus
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %v (HTTP %d)", e.Op, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// outcome maps an error to the metrics outcome label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "transport"
	}
}
