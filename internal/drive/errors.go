// Package drive is a thin client for the parts of the Google Drive v3 API
// grabdoc uses: listing file metadata, ranged document export, and the
// signed-in user. Failures are classified into sentinel errors.
package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for HTTP status classification.
// Use errors.Is(err, drive.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("drive: bad request")
	ErrUnauthorized = errors.New("drive: unauthorized")
	ErrForbidden    = errors.New("drive: forbidden")
	ErrNotFound     = errors.New("drive: not found")
	ErrRateLimited  = errors.New("drive: rate limited")
	ErrServerError  = errors.New("drive: server error")

	// ErrNetwork wraps transport failures: DNS, TLS, connection resets and
	// client timeouts. No HTTP status was received.
	ErrNetwork = errors.New("drive: network error")
)

// APIError carries the status, the first error reason and the message of a
// failed Drive call. It unwraps to one of the sentinels above.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("drive: HTTP %d (%s): %s", e.StatusCode, e.Reason, e.Message)
	}

	return fmt.Sprintf("drive: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for codes with no dedicated sentinel.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}

// classifyError turns an error from the generated client into an *APIError,
// a cancellation, or an ErrNetwork-wrapped transport failure.
func classifyError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		apiErr := &APIError{
			StatusCode: gerr.Code,
			Message:    gerr.Message,
			Err:        classifyStatus(gerr.Code),
		}

		if len(gerr.Errors) > 0 {
			apiErr.Reason = gerr.Errors[0].Reason
		}

		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(gerr.Code)
		}

		return fmt.Errorf("drive: %s: %w", op, apiErr)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("drive: %s canceled: %w", op, err)
	}

	return fmt.Errorf("%w: %s: %w", ErrNetwork, op, err)
}
