package api

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("telefono", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// validationError is a rejected request payload or query.
type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}

// validateStruct validates a struct based on its validation tags
func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return &validationError{msg: strings.Join(msgs, "; ")}
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s es requerido", field)
	case "min":
		return fmt.Sprintf("%s debe tener al menos %s caracteres", field, e.Param())
	case "email":
		return fmt.Sprintf("%s debe ser un correo válido", field)
	case "telefono":
		return fmt.Sprintf("%s debe tener el formato 5555-5555", field)
	default:
		return fmt.Sprintf("%s es inválido", field)
	}
}
