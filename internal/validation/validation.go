// Package validation registers the custom binding tags and turns validator errors into
// readable messages for the response envelope.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"

	AmountRule = "must be greater than 0 with at most 2 decimal places"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)
	ktpPattern   = regexp.MustCompile(`^[0-9]{16}$`)
)

// Register installs the custom tags on gin's validator engine. Safe to call more than once.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return jsonName(fld.Tag.Get("json"), fld.Tag.Get("form"), fld.Name)
	})

	custom := map[string]validator.Func{
		"phone":      validatePhone,
		"ktp":        validateKTP,
		"isodate":    validateISODate,
		"futuredate": validateFutureDate,
		"decimalgt0": validatePositiveDecimal,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func jsonName(jsonTag, formTag, fallback string) string {
	for _, tag := range []string{jsonTag, formTag} {
		name := strings.SplitN(tag, ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return fallback
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func validateKTP(fl validator.FieldLevel) bool {
	return ktpPattern.MatchString(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// validateFutureDate accepts RFC3339 timestamps or plain dates strictly after now.
func validateFutureDate(fl validator.FieldLevel) bool {
	t, err := ParseTime(fl.Field().String())
	return err == nil && t.After(time.Now())
}

func validatePositiveDecimal(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return isMoney(v)
	case json.Number:
		_, ok := ParseAmount(v.String())
		return ok
	case string:
		_, ok := ParseAmount(v)
		return ok
	}
	return false
}

// ParseAmount accepts a money value that is positive and carries at most two decimal places.
// Anything finer would be rounded away by the decimal(15,2) columns.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !isMoney(d) {
		return decimal.Zero, false
	}
	return d, true
}

func isMoney(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2))
}

// ParseTime accepts RFC3339 or YYYY-MM-DD.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(DateLayout, s)
}

// Messages flattens a binding error into one message per failed field.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "uuid", "uuid4":
		return field + " must be a valid UUID"
	case "phone":
		return field + " may only contain digits, spaces, +, - and parentheses"
	case "ktp":
		return field + " must be exactly 16 digits"
	case "isodate":
		return field + " must be a date in YYYY-MM-DD format"
	case "futuredate":
		return field + " must be in the future"
	case "decimalgt0":
		return field + " " + AmountRule
	case "gt":
		return field + " must be greater than 0"
	}
	return fmt.Sprintf("%s failed on %s", field, fe.Tag())
}
