package order

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CheckoutForm is what the buyer typed plus the product carried over from
// the detail page's query string. Field order is the order problems are
// reported in.
type CheckoutForm struct {
	Product string  `validate:"required"`
	Price   float64 `validate:"gte=0"`
	Name    string  `validate:"required"`
	Email   string  `validate:"required,email"`
	Phone   string  `validate:"required"`
	Address string  `validate:"required"`
}

// Normalize trims every text field.
func (f CheckoutForm) Normalize() CheckoutForm {
	f.Product = strings.TrimSpace(f.Product)
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	return f
}

// ErrValidation matches every ValidationError.
var ErrValidation = errors.New("checkout form invalid")

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "checkout form invalid: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate returns a *ValidationError listing every problem, or nil.
func Validate(f CheckoutForm) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Problems: []string{err.Error()}}
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, problemText(fe))
	}
	return &ValidationError{Problems: problems}
}

func problemText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Email is invalid"
	case "gte":
		return fe.Field() + " must not be negative"
	default:
		return fe.Field() + " is invalid"
	}
}
