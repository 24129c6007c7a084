package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reSlug  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	rePhone = regexp.MustCompile(`^\+?[0-9 ().-]{10,20}$`)
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// report json field names instead of Go field names
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = val.RegisterValidation("storeemail", func(fl validator.FieldLevel) bool {
		_, ok := Email(fl.Field().String())
		return ok
	})
	// money fields validate as numbers, so gt=0 works on decimals
	val.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return val
}

// Struct runs tag validation and folds the result into a domain
// validation error naming the first offending field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			return domain.Validation("%s is required", field)
		case "min", "gte":
			return domain.Validation("%s must be at least %s", field, fe.Param())
		case "gt":
			return domain.Validation("%s must be greater than %s", field, fe.Param())
		case "max", "lte", "lt":
			return domain.Validation("%s must be at most %s", field, fe.Param())
		case "storeemail", "email":
			return domain.Validation("%s must be a valid email", field)
		default:
			return domain.Validation("%s is invalid", field)
		}
	}
	return domain.Validation("%v", err)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

// Slug validates a catalog slug like "retro-tee".
func Slug(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 80 {
		return "", false
	}
	return s, reSlug.MatchString(s)
}

// ID parses a positive integer identifier from a path parameter.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 99 {
		return 99
	} // clamp to avoid abuse
	return n
}

// Phone keeps only digits, dropping a leading US country code.
func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !rePhone.MatchString(s) {
		return "", false
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits, len(digits) == 10
}
