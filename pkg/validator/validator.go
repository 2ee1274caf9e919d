package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// CPFRegex accepts a Brazilian tax id with or without punctuation, e.g. 123.456.789-00.
	CPFRegex = regexp.MustCompile(`^\d{3}\.?\d{3}\.?\d{3}-?\d{2}$`)

	// PhoneRegex accepts (DD) 91234-5678 and (DD) 1234-5678 style numbers.
	PhoneRegex = regexp.MustCompile(`^\(\d{2}\)\s?\d{4,5}-?\d{4}$`)
)

// Validator is a validator that validates the given struct.
type Validator interface {
	// Validate validates the given struct
	Validate(s any) error
}

type DefaultValidator struct {
	v *validator.Validate
}

// NewDefaultValidator creates a new default validator.
// It returns a new DefaultValidator and an error if the validator registration fails.
func NewDefaultValidator() (*DefaultValidator, error) {
	v := validator.New()

	// Report json names so field errors line up with form and body fields
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom validators
	if err := v.RegisterValidation("cpf", validateCPF); err != nil {
		return nil, fmt.Errorf("register cpf validator: %w", err)
	}

	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		return nil, fmt.Errorf("register phone validator: %w", err)
	}

	return &DefaultValidator{v: v}, nil
}

func (v DefaultValidator) Validate(s any) error {
	return v.v.Struct(s)
}

// IsValidationError checks if the given error is a validation error
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

// FieldErrors flattens a validation error into field name → message.
// It returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		fields[fe.Field()] = ValidationErrorMessage(fe)
	}
	return fields
}

func ValidationErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "cpf":
		return "must be a valid CPF (e.g. 123.456.789-00)"
	case "phone":
		return "must be a valid phone number (e.g. (11) 91234-5678)"
	default:
		return "is invalid"
	}
}

func validateCPF(fl validator.FieldLevel) bool {
	return CPFRegex.MatchString(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return PhoneRegex.MatchString(fl.Field().String())
}
