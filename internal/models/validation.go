package models

import (
	"errors"
	"strings"
)

// ValidationError is one invalid field. Cause, when set, is matched by
// errors.Is on the enclosing ValidationErrors.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (v ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// ValidationErrors collects every invalid field of a record or batch so they
// can be reported at once. Field paths nest with dots: posts[2].date.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add records err under field. A nested *ValidationErrors is flattened with
// its fields prefixed by field. A nil err is ignored.
func (v *ValidationErrors) Add(field string, err error) {
	if err == nil {
		return
	}
	var nested *ValidationErrors
	if !errors.As(err, &nested) {
		v.Errors = append(v.Errors, ValidationError{Field: field, Message: err.Error(), Cause: err})
		return
	}
	for _, sub := range nested.Errors {
		sub.Field = fieldPath(field, sub.Field)
		v.Errors = append(v.Errors, sub)
	}
}

// AddMessage records a failure without an underlying error.
func (v *ValidationErrors) AddMessage(field, message string) {
	if message != "" {
		v.Errors = append(v.Errors, ValidationError{Field: field, Message: message})
	}
}

// Err returns v as an error, or nil when nothing was recorded.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Is reports whether any recorded cause matches target.
func (v *ValidationErrors) Is(target error) bool {
	if v == nil {
		return false
	}
	for _, e := range v.Errors {
		if e.Cause != nil && errors.Is(e.Cause, target) {
			return true
		}
	}
	return false
}

func fieldPath(prefix, field string) string {
	if prefix == "" {
		return field
	}
	if field == "" {
		return prefix
	}
	return prefix + "." + field
}
