package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Username charset.
	if err := v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate runs struct tag validation on any model or request type.
func Validate(v any) error {
	return validate.Struct(v)
}

// Describe turns the first validation failure in err into a field name and a
// human readable message. ok is false when err is not a validation failure.
func Describe(err error) (field, message string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", "", false
	}
	fe := verrs[0]
	field = fe.Field()
	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", field)
	case "min":
		message = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		message = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		message = fmt.Sprintf("%s must be a valid email address", field)
	case "handle":
		message = fmt.Sprintf("%s may only contain letters, numbers, underscores and hyphens", field)
	case "gte":
		message = fmt.Sprintf("%s must not be negative", field)
	default:
		message = fmt.Sprintf("%s is invalid", field)
	}
	return field, message, true
}
