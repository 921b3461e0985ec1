package service

import (
	"errors"
	"strings"
)

var (
	ErrTenantNotFound     = errors.New("dealer not found")
	ErrDealerUnavailable  = errors.New("dealer is not available")
	ErrProductUnavailable = errors.New("product is not available")
	ErrVariantUnavailable = errors.New("product variant is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrGroupNotFound      = errors.New("group not found")
	ErrSessionNotFound    = errors.New("attendance session not found")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input is well-formed JSON but breaks a
// business rule tied to specific fields.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil returns e when it holds at least one field error.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
