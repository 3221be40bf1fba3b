package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tutora/backend/internal/domain"
)

// New returns a validator that reports fields by their json name and knows the
// booking-specific tags "hhmm" and "role".
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	return v
}

// Check validates s and turns the first failure into an unprocessable domain
// error.
func Check(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return domain.Unprocessable(field + " is required")
	case "max":
		return domain.Unprocessable(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "min", "gte":
		return domain.Unprocessable(fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "lte":
		return domain.Unprocessable(fmt.Sprintf("%s must be at most %s", field, fe.Param()))
	case "hhmm":
		return domain.Unprocessable(field + " must be a time of day in HH:MM form")
	case "role":
		return domain.Unprocessable(field + " must be student or instructor")
	case "uuid":
		return domain.Unprocessable(field + " must be a UUID")
	default:
		return domain.Unprocessable(field + " is invalid")
	}
}
