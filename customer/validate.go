package customer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks the record invariants: non-negative numbers, a known
// contract term and a date-only activity date. The returned error joins one
// message per offending field.
func Validate(c Customer) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	details := make([]error, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "required":
			details = append(details, fmt.Errorf("%s is required", fieldError.Field()))
		default:
			details = append(details, fmt.Errorf("%s is invalid: %v", fieldError.Field(), fieldError.Value()))
		}
	}
	return fmt.Errorf("customer %q: %w", c.ID, errors.Join(details...))
}

// ValidateAll validates every record and returns the errors keyed by row
// position. Records that pass are not listed.
func ValidateAll(records []Customer) map[int]error {
	problems := map[int]error{}
	for i, c := range records {
		if err := Validate(c); err != nil {
			problems[i] = err
		}
	}
	return problems
}
