// Package validation turns raw form input into domain records.
// Field rules run through go-playground/validator; every violated field is
// reported, never just the first one.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/tie-inventory/internal/domain"
)

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = func() *validator.Validate {
	v := validator.New()
	// Report JSON names ("unitPrice") rather than Go names ("UnitPrice").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		if i := strings.IndexByte(name, ','); i >= 0 {
			name = name[:i]
		}
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// structErrors runs the struct rules of s and converts failures to FieldErrors.
// Fields listed in skip already carry a coercion error and are not reported twice.
func structErrors(s any, skip map[string]bool) domain.ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ValidationErrors{{Field: "input", Message: err.Error()}}
	}

	var out domain.ValidationErrors
	for _, e := range verrs {
		if skip[e.Field()] {
			continue
		}
		out = append(out, domain.FieldError{Field: e.Field(), Message: friendlyMessage(e)})
	}
	return out
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
