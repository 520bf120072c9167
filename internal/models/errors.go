package models

import "strings"

// FieldError is a single validation failure tied to the input field that
// caused it, so the web layer can render it next to the right form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// FieldErrors accumulates every violated invariant of one persist attempt.
// Checks are not short-circuited; all violations surface together.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, f := range e {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
