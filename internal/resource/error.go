package resource

import (
	"errors"
	"fmt"
)

// TransportError describes a failed round trip to a collection endpoint:
// the network call failed, the status was not 2xx, or the body was unreadable.
type TransportError struct {
	Method string
	URL    string
	// StatusCode is zero when no response was received.
	StatusCode int
	// Body holds the start of a non-2xx response body.
	Body string
	Err  error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Method, e.URL)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err came from a failed request to the backing API.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the HTTP status carried by err, or zero when err holds no response status.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}
