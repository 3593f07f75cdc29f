package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/go-playground/validator/v10"
)

var (
	ErrApplianceNotFound = errors.New("appliance not found")
	ErrChildNotFound     = errors.New("record not found")
	ErrOwnerUnresolved   = errors.New("no owner could be resolved for the appliance")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// ValidationError carries one entry per offending field. Nothing is written
// when it is returned.
type ValidationError struct {
	Fields []dto.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Fields: []dto.FieldError{{Field: field, Message: message}}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and converts failures into a
// *ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]dto.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, dto.FieldError{
			Field:   fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read as "serviceProvider.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must not be empty"
		}
		return "must be at least " + fe.Param()
	case "datetime":
		return "must be an RFC 3339 date-time"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// parseDateTime parses a value already checked by the datetime tag.
func parseDateTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, invalidField(field, "must be an RFC 3339 date-time")
	}
	return t.UTC(), nil
}
