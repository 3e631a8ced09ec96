package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries every failing field, not just the first. Handlers
// translate it into a 422 response.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty ValidationError ready to collect
// violations.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a violation message for a field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any violation was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}
