package service

import (
	"errors"
	"regexp"

	"github.com/dom/mini-crm/internal/domain"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// validationMessages maps a failing validator tag to the message returned to
// the client. "required" wins over every other tag so that a partially filled
// form reports the missing fields first.
type validationMessages map[string]string

func (m validationMessages) check(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewValidationError("Invalid input")
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return domain.NewValidationError(m["required"])
		}
	}
	if msg, ok := m[fieldErrs[0].Tag()]; ok {
		return domain.NewValidationError(msg)
	}
	return domain.NewValidationError("Invalid " + fieldErrs[0].Field())
}

var (
	registerMessages = validationMessages{
		"required": "Name, email, and password are required",
		"email":    "Invalid email format",
		"min":      "Password must be at least 6 characters",
	}
	loginMessages = validationMessages{
		"required": "Email and password are required",
	}
	customerMessages = validationMessages{
		"required": "Name and phone are required",
		"phone":    "Invalid phone number format",
		"datetime": "Invalid follow-up date format (expected YYYY-MM-DD)",
	}
)
