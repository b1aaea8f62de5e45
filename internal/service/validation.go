package service

import (
	"errors"
	"reflect"
	"strings"

	"spiceshop-service/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// report json names instead of Go field names
	validate.RegisterTagNameFunc(jsonFieldName)
}

// validateInput checks `validate` tags on in and reports the first failure
// as a validation error
func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.New(apperr.ErrValidation, "Invalid request.")
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Newf(apperr.ErrValidation, "%s is required.", fe.Field())
	case "email":
		return apperr.Newf(apperr.ErrValidation, "%s must be a valid email address.", fe.Field())
	case "gte":
		return apperr.Newf(apperr.ErrValidation, "%s must be at least %s.", fe.Field(), fe.Param())
	case "gt":
		return apperr.Newf(apperr.ErrValidation, "%s must be greater than %s.", fe.Field(), fe.Param())
	case "url":
		return apperr.Newf(apperr.ErrValidation, "%s must be a valid URL.", fe.Field())
	default:
		return apperr.Newf(apperr.ErrValidation, "%s is invalid.", fe.Field())
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
