package services

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

// NewValidator reports fields by their JSON names.
func NewValidator() *validator.Validate {
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

// ValidateCustomer checks the contact details and returns one line per
// failing field.
func ValidateCustomer(v *validator.Validate, info models.CustomerInfo) error {
	err := v.Struct(info)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.InternalError{Msg: "validate customer failed", Err: err}
	}
	lines := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		lines = append(lines, fe.Field()+": "+describeTag(fe.Tag()))
	}
	sort.Strings(lines)
	return domain.FieldErrors{Lines: lines, Err: domain.ValidationError{Field: "customer", Msg: "customer details are incomplete"}}
}

func describeTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	}
	return "is invalid (" + tag + ")"
}
