package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/graphkit/errors"
)

// FieldError is a validation failure of a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator collects field errors.
type Validator struct {
	errors []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

func (v *Validator) HasErrors() bool       { return len(v.errors) > 0 }
func (v *Validator) Errors() []FieldError { return v.errors }

// Merge adds the field errors of err, prefixing each field with prefix.
// Errors that carry no field list are recorded under prefix itself.
func (v *Validator) Merge(prefix string, err error) *Validator {
	if err == nil {
		return v
	}
	appErr, ok := errors.AsAppError(err)
	fields, _ := detailFields(appErr)
	if !ok || len(fields) == 0 {
		v.AddError(prefix, err.Error())
		return v
	}
	for _, f := range fields {
		if prefix != "" {
			f.Field = prefix + "." + f.Field
		}
		v.errors = append(v.errors, f)
	}
	return v
}

// Err returns the collected errors as one INVALID_ARGUMENT error, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return newError(v.errors)
}

// Required checks that value is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// OneOf checks that value is one of allowed. An empty value passes.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Min checks that value is at least minVal.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		v.AddError(field, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// Between checks that lo <= value <= hi.
func (v *Validator) Between(field string, value, lo, hi float64) *Validator {
	if value < lo || value > hi {
		v.AddError(field, fmt.Sprintf("must be between %g and %g", lo, hi))
	}
	return v
}

// Custom records message when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

func newError(fields []FieldError) *errors.AppError {
	messages := make([]string, len(fields))
	for i, f := range fields {
		messages[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(messages, "; ")).
		WithDetail("fields", append([]FieldError(nil), fields...))
}

func detailFields(appErr *errors.AppError) ([]FieldError, bool) {
	if appErr == nil {
		return nil, false
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	return fields, ok
}
