package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized indicates that the caller is not allowed to perform the operation.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUnavailable indicates that exchange rates could not be served right now,
// typically because the store is empty and the cold-start ingestion failed.
var ErrUnavailable = errors.New("rates temporarily unavailable")

// maxBodySnippet bounds the response body kept on a FetchError.
const maxBodySnippet = 512

// Retriable is implemented by errors that a later attempt may not hit again.
type Retriable interface {
	IsRetriable() bool
}

// IsRetriable reports whether any error in err's chain is retriable.
func IsRetriable(err error) bool {
	var r Retriable
	if errors.As(err, &r) {
		return r.IsRetriable()
	}
	return false
}

// FetchError is a transport or HTTP failure reaching the rate feed.
// StatusCode is 0 when no response was received.
type FetchError struct {
	StatusCode int
	Body       string
	Err        error
}

// NewFetchError builds a FetchError, truncating the body snippet.
func NewFetchError(statusCode int, body []byte, err error) *FetchError {
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet]
	}
	return &FetchError{StatusCode: statusCode, Body: string(body), Err: err}
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("feed fetch failed: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("feed fetch failed with status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("feed fetch failed with status %d", e.StatusCode)
}

func (e *FetchError) Unwrap() error     { return e.Err }
func (e *FetchError) IsRetriable() bool { return true }

// ParseError means the feed document structure was not recognized.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed parse failed: %s: %v", e.Reason, e.Err)
	}
	return "feed parse failed: " + e.Reason
}

func (e *ParseError) Unwrap() error     { return e.Err }
func (e *ParseError) IsRetriable() bool { return true }

// FieldParseError is a single malformed numeric field. It never aborts
// parsing; the field is stored as zero and the error is kept as a warning.
type FieldParseError struct {
	Currency string
	Field    string
	Value    string
	Err      error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("invalid %s for %s (%q): %v", e.Field, e.Currency, e.Value, e.Err)
}

func (e *FieldParseError) Unwrap() error { return e.Err }

// StoreError is a failed durable read or write.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error     { return e.Err }
func (e *StoreError) IsRetriable() bool { return true }

// NewStoreError wraps err with the failing store operation.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// LogWriteError is a failed ingestion audit-log write.
type LogWriteError struct {
	Err error
}

func (e *LogWriteError) Error() string {
	return fmt.Sprintf("ingestion log write failed: %v", e.Err)
}

func (e *LogWriteError) Unwrap() error { return e.Err }
