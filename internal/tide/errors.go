package tide

import (
	"errors"
	"fmt"

	"github.com/shorecast/shorecast/internal/secrets"
)

// ErrNotAvailable is the terminal error: no usable API key, or every fetch
// path was exhausted without producing any data.
var ErrNotAvailable = errors.New("tide data not available")

// HTTPError is a completed HTTP exchange with a non-success status.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("tide provider returned HTTP %d", e.StatusCode)
}

// DecodeError wraps a response body that did not parse into the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding tide response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError wraps a connection-level failure that survived retries.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tide provider unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// CauseMessage maps a terminal error to the short human-readable cause shown
// to the user in place of the raw error.
func CauseMessage(err error) string {
	var httpErr *HTTPError
	var decodeErr *DecodeError
	var transportErr *TransportError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, secrets.ErrNoAPIKey):
		return "missing credential"
	case errors.As(err, &httpErr):
		return fmt.Sprintf("service returned HTTP %d", httpErr.StatusCode)
	case errors.As(err, &decodeErr):
		return "unexpected response format"
	case errors.As(err, &transportErr):
		return "network unavailable"
	case errors.Is(err, ErrNotAvailable):
		return "tide data unavailable"
	default:
		return "tide data unavailable"
	}
}
