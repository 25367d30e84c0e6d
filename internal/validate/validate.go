// Package validate runs client-side checks on request payloads so that
// malformed input never reaches the network.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	Validate *validator.Validate

	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	nonBlank     = regexp.MustCompile(`\S`)
	nonDigit     = regexp.MustCompile(`\D`)
)

func init() {
	Validate = validator.New()

	Validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Amounts are compared as numbers by the built-in gt/lt tags.
	Validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		d, ok := v.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})

	_ = Validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlank.MatchString(fl.Field().String())
	})
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a payload fails local checks.
type ValidationError struct {
	Fields []FieldError
}

// Error returns the first field message.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	return e.Fields[0].Message
}

// Struct validates v and returns a *ValidationError listing every failed field.
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "phone":
		return "Please enter a valid 10-digit phone number"
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

var fieldMessages = map[string]string{
	"clientId": "Client information is missing. Please wait for data to load or contact administrator.",
	"branchId": "Branch information is missing. Please select a branch or contact administrator.",
	"amount":   "Please enter a valid amount greater than 0",
	"utrId":    "UTR ID is required",
}

// NormalizePhone keeps digits only and truncates to ten of them.
func NormalizePhone(s string) string {
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) > 10 {
		digits = digits[:10]
	}
	return digits
}

// NormalizeCode trims and upper-cases a branch code.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
