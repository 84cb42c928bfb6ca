// Package validation collects field level problems into a single Result
// instead of stopping at the first one.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Result maps a JSON field name to a human readable message.
type Result struct {
	Fields map[string]string
}

// New returns an empty Result.
func New() *Result {
	return &Result{Fields: make(map[string]string)}
}

// Add records a problem for field. The first message for a field wins.
func (r *Result) Add(field, message string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	if _, exists := r.Fields[field]; !exists {
		r.Fields[field] = message
	}
}

// Merge copies every field of other into r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	for field, msg := range other.Fields {
		r.Add(field, msg)
	}
}

// Valid reports whether no problems were recorded.
func (r *Result) Valid() bool {
	return r == nil || len(r.Fields) == 0
}

// Err returns nil for a valid result and an *Error otherwise.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &Error{Fields: r.Fields}
}

// Error is the error form of an invalid Result.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsError reports whether err carries field errors.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct runs the `validate` tags of s and returns every failure.
func Struct(s interface{}) *Result {
	result := New()

	err := engine().Struct(s)
	if err == nil {
		return result
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		result.Add("non_field_errors", err.Error())
		return result
	}

	for _, fe := range fieldErrs {
		result.Add(fe.Field(), message(fe))
	}
	return result
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}
