package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFetchFailed is the single user-facing failure every fetch error collapses to.
var ErrFetchFailed = errors.New("Failed to load dashboard")

// FetchErrorKind classifies why a fetch failed. The view layer does not
// distinguish kinds; they exist for logs and metrics.
type FetchErrorKind string

const (
	FetchErrorTransport FetchErrorKind = "transport"
	FetchErrorStatus    FetchErrorKind = "status"
	FetchErrorParse     FetchErrorKind = "parse"
)

// FetchError reports a failed dashboard fetch. Its message is always the
// generic ErrFetchFailed text; the cause is reachable through Unwrap.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return ErrFetchFailed.Error()
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// Detail describes the underlying cause, for logging only.
func (e *FetchError) Detail() string {
	switch {
	case e.Kind == FetchErrorStatus:
		return fmt.Sprintf("status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

// MalformedResponseError is returned when the payload is valid JSON but does
// not match the snapshot schema.
type MalformedResponseError struct {
	Fields []string
}

func (e *MalformedResponseError) Error() string {
	return "malformed dashboard response: " + strings.Join(e.Fields, ", ")
}
