package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError blocks a transition. It is recoverable by correcting
// input and is surfaced inline, never as a toast.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Fields[key]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps a ValidationError from err, if present.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}

// ErrSubmissionInFlight guards against double submission while a previous
// submit call is still running for the same session.
var ErrSubmissionInFlight = errors.New("submission already in progress")
