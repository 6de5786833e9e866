package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their json names.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Echo adapts a validator to echo.Validator so handlers can call c.Validate.
type Echo struct {
	V *validator.Validate
}

func (e *Echo) Validate(i interface{}) error {
	return e.V.Struct(i)
}
