// Package validators builds the request validator with the diagram enums registered.
package validators

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/erd-studio/engine/internal/diagram"
)

// New returns a validator reporting json field names and knowing the
// columntype and nodecolor tags.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("columntype", func(fl validator.FieldLevel) bool {
		return diagram.ColumnType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("nodecolor", func(fl validator.FieldLevel) bool {
		return diagram.Color(fl.Field().String()).Valid()
	})
	return v
}

// Message flattens validation errors into one line.
func Message(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		p := fe.Namespace() + ": failed " + fe.Tag()
		if fe.Param() != "" {
			p += "=" + fe.Param()
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "; ")
}
