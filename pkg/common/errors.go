package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an element or template lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrTimeout is returned when a bounded DOM wait expires.
	ErrTimeout = errors.New("timed out")
	// ErrNoTemplate means no registered template matches a URL.
	ErrNoTemplate = fmt.Errorf("template %w", ErrNotFound)
	// ErrUnsupportedDateFormat means a timestamp matched none of the known layouts.
	ErrUnsupportedDateFormat = errors.New("unsupported date format")
	// ErrFatal marks errors that must end the run.
	ErrFatal = errors.New("fatal")
)

// Failure kinds stored on FieldFailure.
const (
	KindNotFound    = "not_found"
	KindTimeout     = "timeout"
	KindDate        = "unsupported_date"
	KindUnavailable = "content_unavailable"
	KindError       = "error"
)

// ContentUnavailableError is raised when the portal says an article was
// removed or cannot be shown. Notice carries the portal's own text.
type ContentUnavailableError struct {
	URL    string
	Notice string
}

func (e *ContentUnavailableError) Error() string {
	if e.Notice == "" {
		return fmt.Sprintf("content unavailable at %s", e.URL)
	}
	return fmt.Sprintf("content unavailable at %s: %s", e.URL, e.Notice)
}

// Kind maps an error onto one of the failure kinds.
func Kind(err error) string {
	var unavailable *ContentUnavailableError
	switch {
	case errors.As(err, &unavailable):
		return KindUnavailable
	case errors.Is(err, ErrUnsupportedDateFormat):
		return KindDate
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindError
	}
}

// Fatal wraps err so that errors.Is(err, ErrFatal) holds.
func Fatal(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrFatal, fmt.Errorf(format, args...))
}
