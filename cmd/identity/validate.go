package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterInput is a registration request as received from a client.
type RegisterInput struct {
	Username string    `validate:"required,min=3,max=50"`
	Email    string    `validate:"required,email,max=254"`
	Password string    `validate:"required"`
	Now      time.Time `validate:"-"`
}

// CleanUsername trims surrounding whitespace. Matching is otherwise exact.
func CleanUsername(s string) string {
	return strings.TrimSpace(s)
}

// CleanEmail trims surrounding whitespace. Matching is otherwise exact.
func CleanEmail(s string) string {
	return strings.TrimSpace(s)
}

func (in RegisterInput) cleaned() RegisterInput {
	in.Username = CleanUsername(in.Username)
	in.Email = CleanEmail(in.Email)
	return in
}

func validateRegister(op string, in RegisterInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return invalid(op, describeFieldError(verrs[0]))
	}
	return invalid(op, "invalid input")
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
