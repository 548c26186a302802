package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Degraded downstream calls all satisfy errors.Is(err, ErrServiceUnavailable),
// so callers need a single check for the "try again later" contract.
// ErrCircuitOpen is the fail-fast variant raised without any I/O attempt.
var (
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrCircuitOpen        = fmt.Errorf("circuit open: %w", ErrServiceUnavailable)
	ErrCatalogUnavailable = fmt.Errorf("catalog unavailable: %w", ErrServiceUnavailable)
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")

	// ErrStore marks cache or database I/O failures. Fatal for the
	// current request, never silently swallowed.
	ErrStore = errors.New("store failure")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// A ValidationError collects field-level failures. It is recoverable:
// the presentation layer renders the fields inline instead of failing
// the whole request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed, keeping the
// `if err := v.Validate(); err != nil` idiom intact.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for _, f := range e.Fields {
		sb.WriteString(" ")
		sb.WriteString(f.Field)
	}
	return sb.String()
}
