package airs

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates scan failures. Each kind is a hard stop for the
// input being scanned; none of them is retried.
type ErrorKind int

const (
	// ErrorKindConnection covers transport, DNS and socket failures,
	// including a tripped circuit breaker.
	ErrorKindConnection ErrorKind = iota

	// ErrorKindTimeout means no response arrived within the configured deadline.
	ErrorKindTimeout

	// ErrorKindHTTPStatus means the service answered with a non-2xx status.
	ErrorKindHTTPStatus

	// ErrorKindMalformedResponse means the body could not be parsed as a verdict.
	ErrorKindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindConnection:
		return "connection_failed"
	case ErrorKindTimeout:
		return "timeout"
	case ErrorKindHTTPStatus:
		return "http_status_error"
	case ErrorKindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// ScanError is the typed failure returned by Client.Scan.
type ScanError struct {
	Kind ErrorKind

	// StatusCode and Body are set for ErrorKindHTTPStatus; Body is kept
	// verbatim for diagnostics.
	StatusCode int
	Body       string

	Err error
}

func (e *ScanError) Error() string {
	switch e.Kind {
	case ErrorKindHTTPStatus:
		return fmt.Sprintf("scan failed (%s): status %d: %s", e.Kind, e.StatusCode, e.Body)
	default:
		if e.Err != nil {
			return fmt.Sprintf("scan failed (%s): %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("scan failed (%s)", e.Kind)
	}
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// AsScanError extracts a *ScanError from an error chain.
func AsScanError(err error) (*ScanError, bool) {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr, true
	}
	return nil, false
}
