package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicateReport is returned when the student already has a report for
// the same date.
var ErrDuplicateReport = errors.New("a report for this student and date already exists")

// ValidationError describes rejected input. Fields maps the JSON field name
// to a readable message; it is empty for errors not tied to one field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a persistence fault.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
