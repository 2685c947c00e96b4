package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Remote operation errors
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrPartialFailure     = errors.New("partial failure")
	ErrConfigMissing      = errors.New("configuration missing")
)

// coder is satisfied by *ApiErr and by any remote error that carries a code.
type coder interface {
	Code() string
}

// Code returns the code carried by err, or "" when err has none.
func Code(err error) string {
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// IsClientError reports whether err carries a client-class code, i.e. one
// starting with "4".
func IsClientError(err error) bool {
	return strings.HasPrefix(Code(err), "4")
}

// NewRemoteError builds an error for a failed call to a third-party API,
// keeping the remote status so retry logic can classify it.
func NewRemoteError(service string, statusCode int, message string) *ApiErr {
	return &ApiErr{
		StatusCode: statusCode,
		err:        fmt.Errorf("%s: %w", service, ErrServiceUnavailable),
		Details:    message,
	}
}

// NewPartialFailureError wraps the first failure of a bulk operation in which
// some rows were nevertheless written.
func NewPartialFailureError(operation string, succeeded, failed int, first error) *ApiErr {
	status := http.StatusInternalServerError
	var apiErr *ApiErr
	if errors.As(first, &apiErr) {
		status = apiErr.StatusCode
	}
	return &ApiErr{
		StatusCode: status,
		err:        ErrPartialFailure,
		Details:    fmt.Sprintf("%s: %d rows written, %d operation(s) failed", operation, succeeded, failed),
		Cause:      first,
	}
}

func NewConfigMissingError(key string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("%s is not configured", key),
		Field:      key,
	}
}

func IsPartialFailureError(err error) bool {
	return errors.Is(err, ErrPartialFailure)
}
