package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/graphkit/errors"
)

// structValidator reports fields by their mapstructure key so messages match
// the keys users write in config.yml.
var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return toSnakeCase(f.Name)
		}
		return name
	})
	return v
})

// Validate checks s against its `validate` struct tags. Failures are
// reported as one INVALID_ARGUMENT error listing every field.
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	v := New()
	for _, e := range verrs {
		v.AddError(fieldPath(e), message(e))
	}
	return v.Err()
}

// fieldPath drops the root struct name from the namespace, so
// "Config.loader.batch_size" becomes "loader.batch_size".
func fieldPath(e validator.FieldError) string {
	if _, rest, ok := strings.Cut(e.Namespace(), "."); ok {
		return rest
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	bound := func(prefix string) string {
		if isNumeric(e.Kind()) {
			return prefix + e.Param()
		}
		return prefix + e.Param() + " characters"
	}
	switch e.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return bound("must be at least ")
	case "max", "lte":
		return bound("must be at most ")
	case "oneof":
		return "must be one of: " + e.Param()
	case "url":
		return "must be a valid URL"
	case "hostname_port":
		return "must be a host:port pair"
	}
	return "is invalid"
}

func isNumeric(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || k == reflect.Float32 || k == reflect.Float64
}

// toSnakeCase turns BatchSize into batch_size.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
