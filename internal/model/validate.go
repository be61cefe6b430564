package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/mechatrack/internal/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Check validates v's struct tags and reports the first failing field as a
// validation error.
func Check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errs.Validation(fieldMessage(fieldErrs[0]))
	}
	return errs.Wrap(errs.CodeValidation, err, "invalid input")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gt":
		if fe.Param() == "0" {
			return capitalize(fe.Field()) + " must be positive"
		}
		return fmt.Sprintf("%s must be greater than %s", capitalize(fe.Field()), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", capitalize(fe.Field()), fe.Param())
	}
	return fe.Field() + " is invalid"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
