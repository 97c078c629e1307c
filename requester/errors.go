package requester

import (
	"errors"
	"fmt"
)

// ErrNetwork marks transport-level failures (connection refused, timeout).
// Wrapped errors remain inspectable with errors.Is(err, ErrNetwork).
var ErrNetwork = errors.New("network unavailable")

// APIError is any non-2xx response from the Peerberry API. When the caller
// supplied an override error for the request and the status signals a
// rejected credential or business rule, the override is reachable through
// errors.Is / errors.As via Unwrap.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("peerberry api: %s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.kind }
