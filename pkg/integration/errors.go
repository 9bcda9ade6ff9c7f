package integration

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Kind identifies the class of an integration failure.
type Kind string

const (
	KindNetworkError     Kind = "NETWORK_ERROR"
	KindTimeout          Kind = "TIMEOUT"
	KindInvalidPayload   Kind = "INVALID_PAYLOAD"
	KindUnseenLabel      Kind = "UNSEEN_LABEL"
	KindDataValidation   Kind = "DATA_VALIDATION"
	KindMLServiceError   Kind = "ML_SERVICE_ERROR"
	KindInsufficientData Kind = "INSUFFICIENT_DATA"
	KindRateLimit        Kind = "RATE_LIMIT"
	KindServerError      Kind = "SERVER_ERROR"
)

// CorrectionFunc rewrites a payload to work around a classified failure.
// It must not mutate the input slice.
type CorrectionFunc func(err *Error, payload []map[string]interface{}) []map[string]interface{}

// Correction describes an automatic recovery strategy for a failure.
type Correction struct {
	Type        string // "auto", "manual" or "skip"
	Description string
	Apply       CorrectionFunc
}

// FieldError is one structured validation failure reported against a
// payload field. Path segments address nested values, array indices
// included.
type FieldError struct {
	Path     []interface{} `json:"path"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Expected string        `json:"expected,omitempty"`
	Minimum  *float64      `json:"minimum,omitempty"`
	Maximum  *float64      `json:"maximum,omitempty"`
}

// ValidationError carries the full per-field error list produced by
// payload validation. It satisfies the error interface so it can travel
// through Classify like any other failure.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payload validation failed: %d field error(s)", len(e.Errors))
}

// HTTPError is a non-2xx response from the upstream service, kept with
// enough of the response to classify it.
type HTTPError struct {
	StatusCode int
	Body       string
	// Structured validation details from the response body, if any.
	Details []FieldError
	Header  http.Header
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Error is a classified integration failure.
type Error struct {
	Kind             Kind
	Message          string
	Retryable        bool
	RetryDelay       time.Duration // zero means "no suggestion"
	ValidationErrors []FieldError
	Correction       *Correction
	cause            error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// AsError extracts a classified *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var ie *Error
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

const defaultRateLimitDelay = 60 * time.Second

// Classify maps an arbitrary failure to a stable Error value. It is a
// pure function of its input: the same status/body/header combination
// always yields the same kind and retryability.
func Classify(err error) *Error {
	if ie, ok := AsError(err); ok {
		return ie
	}

	if isTimeout(err) {
		return &Error{
			Kind:       KindTimeout,
			Message:    "request timed out",
			Retryable:  true,
			RetryDelay: 2 * time.Second,
			cause:      err,
		}
	}

	if isConnectionFailure(err) {
		return &Error{
			Kind:       KindNetworkError,
			Message:    "network connection failed",
			Retryable:  true,
			RetryDelay: 1 * time.Second,
			cause:      err,
		}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return classifyHTTP(httpErr)
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return &Error{
			Kind:             KindDataValidation,
			Message:          "data validation failed",
			Retryable:        false,
			ValidationErrors: valErr.Errors,
			Correction: &Correction{
				Type:        "auto",
				Description: "apply automatic data corrections",
				Apply:       correctValidationErrors,
			},
			cause: err,
		}
	}

	msg := "unknown error occurred"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Kind:      KindMLServiceError,
		Message:   msg,
		Retryable: false,
		cause:     err,
	}
}

func classifyHTTP(err *HTTPError) *Error {
	switch {
	case err.StatusCode == http.StatusTooManyRequests:
		return &Error{
			Kind:       KindRateLimit,
			Message:    "rate limit exceeded",
			Retryable:  true,
			RetryDelay: retryAfterDelay(err.Header),
			cause:      err,
		}

	case err.StatusCode >= 500:
		return &Error{
			Kind:       KindServerError,
			Message:    fmt.Sprintf("server error: %d", err.StatusCode),
			Retryable:  true,
			RetryDelay: 5 * time.Second,
			cause:      err,
		}

	case err.StatusCode == http.StatusBadRequest || err.StatusCode == http.StatusUnprocessableEntity:
		body := strings.ToLower(err.Body)
		if strings.Contains(body, "unseen label") || strings.Contains(body, "unknown category") {
			msg := err.Body
			if msg == "" {
				msg = "unknown label or category in data"
			}
			return &Error{
				Kind:      KindUnseenLabel,
				Message:   msg,
				Retryable: false,
				Correction: &Correction{
					Type:        "auto",
					Description: "replace unseen labels with the default category",
					Apply:       correctUnseenLabels,
				},
				cause: err,
			}
		}

		msg := err.Body
		if msg == "" {
			msg = "invalid request payload"
		}
		return &Error{
			Kind:             KindInvalidPayload,
			Message:          msg,
			Retryable:        false,
			ValidationErrors: err.Details,
			cause:            err,
		}
	}

	return &Error{
		Kind:      KindMLServiceError,
		Message:   err.Error(),
		Retryable: false,
		cause:     err,
	}
}

// retryAfterDelay reads the Retry-After header (seconds). A missing or
// unparsable header falls back to a usable default.
func retryAfterDelay(header http.Header) time.Duration {
	if header == nil {
		return defaultRateLimitDelay
	}
	raw := header.Get("Retry-After")
	if raw == "" {
		return defaultRateLimitDelay
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || seconds <= 0 {
		return defaultRateLimitDelay
	}
	return time.Duration(seconds) * time.Second
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ETIMEDOUT)
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
