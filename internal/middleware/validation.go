package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
	"github.com/trazeinos/ibex35-dashboard/internal/format"
)

// Validator checks request structs tagged with `validate`. Besides the
// built-in tags it knows `ticker` and `isodate`.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the dashboard's custom tags
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("isodate", isISODate)
	v.RegisterValidation("ticker", isValidTicker)

	// Report query parameter names rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validate: v}
}

// Struct validates s and converts failures into a 400 APIError listing
// every offending field
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Request could not be validated", err.Error())
	}

	out := make([]apperrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apperrors.NewValidationErrors(out)
}

func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date in yyyy-mm-dd format", field)
	case "ticker":
		return fmt.Sprintf("%s must be printable text of at most %d bytes", field, maxTickerLen)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := format.ParseISODate(fl.Field().String())
	return err == nil
}

// maxTickerLen bounds a ticker in bytes.
const maxTickerLen = 64

// isValidTicker accepts any printable UTF-8 symbol up to maxTickerLen bytes,
// the same set the price file loader takes (SAN, SAN.MC, ^IBEX, IBEX 35).
// Whether the ticker exists is left to the dataset.
func isValidTicker(fl validator.FieldLevel) bool {
	ticker := fl.Field().String()
	if ticker == "" || len(ticker) > maxTickerLen || !utf8.ValidString(ticker) {
		return false
	}
	for _, ch := range ticker {
		if !unicode.IsPrint(ch) {
			return false
		}
	}
	return true
}
