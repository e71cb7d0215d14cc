// Package validation checks the login and checkout forms before they reach the catalog API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LoginForm is the admin sign-in form
type LoginForm struct {
	Username string `json:"username" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=6"`
}

// CheckoutForm is the storefront order form
type CheckoutForm struct {
	Email   string `json:"email" validate:"required,loose_email"`
	Name    string `json:"name" validate:"required,min=2"`
	Tel     string `json:"tel" validate:"required,min=8,digits"`
	Address string `json:"address" validate:"required"`
	Message string `json:"message"`
}

var (
	looseEmailRe = regexp.MustCompile(`^\S+@\S+$`)
	digitsRe     = regexp.MustCompile(`^\d+$`)
)

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
	_ = v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
		return looseEmailRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsRe.MatchString(fl.Field().String())
	})
	return v
}

// FieldErrors maps a form field's JSON name to a readable message
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+fe[field])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Validate checks a form struct. It returns FieldErrors when any rule fails.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	fe := make(FieldErrors, len(verrs))
	for _, ve := range verrs {
		if _, seen := fe[ve.Field()]; seen {
			continue
		}
		fe[ve.Field()] = message(ve)
	}
	return fe
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "loose_email":
		return "must be an email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "digits":
		return "must contain digits only"
	default:
		return "is invalid"
	}
}
