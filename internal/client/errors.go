package client

import (
	"errors"
	"fmt"
)

// RequestError represents a non-2xx response from the remote service.
// The caller decides whether to treat it as a partial failure of one
// batch item or abort the harvest.
type RequestError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("client: API error %d at %s: %s", e.StatusCode, e.URL, truncate(e.Body, 256))
}

// TransportError represents a network-level failure: timeout,
// connection reset or a malformed response body. It is distinct from
// RequestError so batch orchestration can apply a different retry
// policy to each.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client: transport failure at %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRequestError reports whether err is a non-2xx API response.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// IsTransportError reports whether err is a network-level failure.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == 404
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == 401
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
