package serverutils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs the struct's validate tags and converts failures into
// a 400 AppError keyed by JSON field name.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return BadRequest(err.Error())
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[jsonName(fe.Field())] = describeTag(fe)
	}

	appErr := NewAppError(400, "request/validation-failed", "Invalid request")
	appErr.Details = details
	return appErr
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "eqfield":
		return "must match " + jsonName(fe.Param())
	case "alphanum":
		return "may only contain letters and digits"
	}
	return "is invalid"
}
