// Package validate runs go-playground struct tags and converts failures into
// apperr.ValidationError keyed by snake_case field paths.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// decimal.Decimal is validated as a number so gt=0 and gte=0 work.
	val.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}

		return nil
	}, decimal.Decimal{})

	// NUMERIC(12,2) and NUMERIC(12,3) columns.
	mustRegister(val, "money", fits(2, 10))
	mustRegister(val, "qty", fits(3, 9))

	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
			return name
		}

		return snake(f.Name)
	})

	return val
}

func mustRegister(val *validator.Validate, tag string, fn validator.Func) {
	if err := val.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// fits reports whether a decimal has at most places fractional digits and an
// absolute value below 10^digits.
func fits(places int32, digits int32) validator.Func {
	limit := decimal.New(1, digits)

	return func(fl validator.FieldLevel) bool {
		d, ok := decimalField(fl)
		if !ok {
			return false
		}

		return d.Equal(d.Truncate(places)) && d.Abs().LessThan(limit)
	}
}

// decimalField reads the field from its parent, since the custom type func
// has already turned fl.Field() into a float64.
func decimalField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	f := reflect.Indirect(fl.Parent()).FieldByName(fl.StructFieldName())
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return decimal.Decimal{}, false
		}

		f = f.Elem()
	}

	if !f.IsValid() || !f.CanInterface() {
		return decimal.Decimal{}, false
	}

	d, ok := f.Interface().(decimal.Decimal)

	return d, ok
}

// Struct validates s. It returns nil or a *apperr.ValidationError.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = message(fe)
	}

	return &apperr.ValidationError{Fields: fields}
}

// fieldPath drops the top-level struct name: "CreateParams.items[0].amount" -> "items[0].amount".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}

	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "max":
		return "must have at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "money":
		return "must have at most 2 decimal places and be less than 10000000000"
	case "qty":
		return "must have at most 3 decimal places and be less than 1000000000"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

func snake(s string) string {
	var b strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}

			r = unicode.ToLower(r)
		}

		b.WriteRune(r)
	}

	return b.String()
}
