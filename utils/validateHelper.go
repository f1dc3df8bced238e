package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return ValidatePhoneNumber(fl.Field().String(), CountryCode) == nil
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := ParseReportDate(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// IsStrongPassword requires a lowercase letter, an uppercase letter and a digit.
func IsStrongPassword(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// ParseReportDate accepts a calendar date or an RFC 3339 timestamp.
func ParseReportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ValidateStruct runs the struct tags and converts failures into a validation AppError.
func ValidateStruct(input any) error {
	err := Validator().Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewUpstream("Internal server error", err)
	}
	return NewValidationError("Validation failed", ProcessValidationErrors(verrs)...)
}

func ProcessValidationErrors(verrs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(verrs))
	for _, ve := range verrs {
		out = append(out, FieldError{Field: fieldPath(ve), Message: validationMessage(ve)})
	}
	return out
}

// fieldPath keeps only the json names of the namespace:
// NewReport.ReportContent.staff[0].name -> staff[0].name
func fieldPath(ve validator.FieldError) string {
	parts := strings.Split(ve.Namespace(), ".")
	kept := parts[:0]
	for _, p := range parts[1:] {
		if p != "" && unicode.IsUpper(rune(p[0])) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return ve.Field()
	}
	return strings.Join(kept, ".")
}

func validationMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return ve.Field() + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		if ve.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", ve.Field(), ve.Param())
		}
		return fmt.Sprintf("%s must be at least %s", ve.Field(), ve.Param())
	case "max":
		if ve.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", ve.Field(), ve.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", ve.Field(), ve.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", ve.Field(), strings.ReplaceAll(ve.Param(), " ", ", "))
	case "username":
		return "Username can only contain letters, numbers, and underscores"
	case "strongpassword":
		return "Password must contain at least one lowercase letter, one uppercase letter, and one number"
	case "phone":
		return "Please provide a valid phone number"
	case "isodate":
		return "Please provide a valid date"
	default:
		return fmt.Sprintf("%s failed on %s", ve.Field(), ve.Tag())
	}
}
