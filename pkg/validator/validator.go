package validator

import (
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	})
	v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	v.RegisterValidation("syrianphone", func(fl validator.FieldLevel) bool {
		return IsSyrianPhone(fl.Field().String())
	})
	v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return entity.IsValidWeekday(fl.Field().String())
	})

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs
	}

	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required", "required_without":
			errs[field] = field + " is required"
		case "email":
			errs[field] = field + " must be a valid email address"
		case "min":
			errs[field] = field + " must be at least " + e.Param() + " characters"
		case "max":
			errs[field] = field + " must be at most " + e.Param() + " characters"
		case "gte":
			errs[field] = field + " must be greater than or equal to " + e.Param()
		case "lte":
			errs[field] = field + " must be less than or equal to " + e.Param()
		case "oneof":
			errs[field] = field + " must be one of: " + e.Param()
		case "hhmm":
			errs[field] = field + " must use HH:MM format"
		case "isodate":
			errs[field] = field + " must use YYYY-MM-DD format"
		case "strongpassword":
			errs[field] = field + " must contain at least 8 characters with an uppercase letter, a lowercase letter and a digit"
		case "syrianphone":
			errs[field] = field + " must be a valid Syrian phone number"
		case "weekday":
			errs[field] = field + " must be a lowercase English weekday name"
		case "uuid":
			errs[field] = field + " must be a valid id"
		default:
			errs[field] = field + " is invalid"
		}
	}

	return errs
}

// IsClock reports whether s is a 24h HH:MM time of day.
func IsClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// IsStrongPassword requires 8+ characters with upper, lower and digit.
func IsStrongPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// NormalizePhone reduces a Syrian number to its local form 0XXXXXXXXX so
// 0912345678, 912345678 and 0912 345 678 share one key. Other input is
// returned as digits only.
func NormalizePhone(s string) string {
	digits := phoneDigits(s)
	if len(digits) == 9 && digits[0] == '9' {
		return "0" + digits
	}
	return digits
}

func phoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsSyrianPhone accepts 9 digits starting with 9 or 10 digits starting with 0,
// after stripping formatting characters.
func IsSyrianPhone(s string) bool {
	digits := phoneDigits(s)
	switch len(digits) {
	case 9:
		return digits[0] == '9'
	case 10:
		return digits[0] == '0'
	}
	return false
}
