package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors groups validation failures by top-level JSON field, the way
// the transfer form expects them.
func fieldErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{"non_field_errors": {err.Error()}}
	}

	out := make(map[string][]string)
	for _, fe := range verrs {
		// Namespace is "Struct.field[0].sub"; drop the struct name.
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		top := path
		if i := strings.IndexAny(top, ".["); i >= 0 {
			top = top[:i]
		}
		msg := describe(fe)
		if path != top {
			msg = path + ": " + msg
		}
		out[top] = append(out[top], msg)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s long", fe.Param())
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// validateBody checks req and writes a 400 with field errors on failure.
func validateBody(w http.ResponseWriter, v *validator.Validate, req any) bool {
	if err := v.Struct(req); err != nil {
		jsonResponse(w, http.StatusBadRequest, fieldErrors(err))
		return false
	}
	return true
}
