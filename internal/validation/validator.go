// Package validation turns raw request input into validated domain requests.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/weiawesome/ward-rooms/internal/domain"
)

// Validator checks domain requests against their validate tags and reports
// failures as *domain.ValidationError keyed by JSON path.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s. It returns nil or a *domain.ValidationError.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewValidationError("", err.Error())
	}

	out := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		out.Add(fieldPath(fe.Namespace()), message(fe))
	}
	return out
}

// fieldPath drops the root struct name: "CreateRoomRequest.capacity.totalBeds"
// becomes "capacity.totalBeds".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "min":
		return fe.Field() + " must not be empty"
	case "oneof":
		return fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fe.Field() + " is invalid"
	}
}

// merge combines parse and validation failures into one error. Only the
// first failure per field is kept.
func merge(errs ...error) error {
	out := &domain.ValidationError{}
	seen := make(map[string]bool)
	for _, err := range errs {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Fields {
				if !seen[fe.Field] {
					seen[fe.Field] = true
					out.Fields = append(out.Fields, fe)
				}
			}
		} else if err != nil {
			return err
		}
	}
	if !out.HasErrors() {
		return nil
	}
	return out
}
