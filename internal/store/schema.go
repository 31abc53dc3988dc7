package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidationFailed is matched by every *ValidationError
var ErrValidationFailed = errors.New("validation failed")

// Schema describes the table a store writes to
type Schema struct {
	Table      string
	PrimaryKey string
	// Columns lists every writable column besides the primary key; empty
	// means the table accepts any column
	Columns []string
	// Required columns must be present and non-empty on save
	Required []string
}

// PK returns the primary key column, defaulting to "id"
func (s Schema) PK() string {
	if s.PrimaryKey == "" {
		return "id"
	}
	return s.PrimaryKey
}

// Validate checks a record against the schema before it is written
func (s Schema) Validate(rec *Record) error {
	var errs []FieldError

	if rec.ID <= 0 {
		errs = append(errs, FieldError{Field: s.PK(), Message: "must be a positive integer"})
	}

	for _, col := range s.Required {
		v, ok := rec.Attributes[col]
		if !ok || v == nil {
			errs = append(errs, FieldError{Field: col, Message: "is required"})
			continue
		}
		if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
			errs = append(errs, FieldError{Field: col, Message: "cannot be blank"})
		}
	}

	if len(s.Columns) > 0 {
		known := make(map[string]struct{}, len(s.Columns)+1)
		known[s.PK()] = struct{}{}
		for _, c := range s.Columns {
			known[c] = struct{}{}
		}
		for _, col := range rec.Columns() {
			if _, ok := known[col]; !ok {
				errs = append(errs, FieldError{Field: col, Message: fmt.Sprintf("is not a column of %s", s.Table)})
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ValidationError contains the validation errors for a record
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", ve.Errors[0].Field, ve.Errors[0].Message)
	}
	return fmt.Sprintf("validation failed: %d errors", len(ve.Errors))
}

// Is reports whether target is ErrValidationFailed
func (ve *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string
	Message string
}
