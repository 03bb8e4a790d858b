// Package validation checks request parameters with validator/v10 and
// reports failures as domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/contribgraph/contribgraph-server/internal/color"
	domainerrors "github.com/contribgraph/contribgraph-server/internal/errors"
	"github.com/contribgraph/contribgraph-server/internal/github"
	"github.com/contribgraph/contribgraph-server/internal/render"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the chart-specific tags registered:
//
//	ghuser    GitHub login
//	hexcolor  six hex digits, optional leading '#'
//	theme     built-in theme name
//	preset    built-in preset name
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "ghuser", func(fl validator.FieldLevel) bool {
		return github.ValidUsername(fl.Field().String())
	})
	mustRegister(v, "hexcolor", func(fl validator.FieldLevel) bool {
		_, err := color.ParseHex(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "theme", func(fl validator.FieldLevel) bool {
		return color.IsTheme(fl.Field().String())
	})
	mustRegister(v, "preset", func(fl validator.FieldLevel) bool {
		_, ok := render.LookupPreset(fl.Field().String())
		return ok
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}

	fields := make([]string, 0, len(fieldErrors))
	for f := range fieldErrors {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+fieldErrors[f])
	}

	return domainerrors.ValidationWithDetails("invalid parameters: "+strings.Join(parts, "; "), fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte", "min":
		return "must be greater than or equal to " + e.Param()
	case "lte", "max":
		return "must be less than or equal to " + e.Param()
	case "ghuser":
		return "must be a valid GitHub username"
	case "hexcolor":
		return "must be a six-digit hex color"
	case "theme":
		return "must be one of: " + strings.Join(color.Themes(), " ")
	case "preset":
		return "must be a known preset"
	default:
		return "is invalid"
	}
}
