package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/users"
)

// newValidator reports fields by their JSON names and knows the portal roles
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("portal_role", func(fl validator.FieldLevel) bool {
		return users.RoleType(fl.Field().String()).Valid()
	})
	return v
}

// validateRequest runs struct validation and turns the first failure into a caller-facing message
func (s *Server) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}

	fe := validationErrs[0]
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperrors.Invalid("%s is required", field)
	case "email":
		return apperrors.Invalid("Invalid email address")
	case "portal_role":
		return apperrors.Invalid("Invalid role %q", fe.Value())
	case "gt":
		return apperrors.Invalid("%s must be greater than %s", field, fe.Param())
	case "gte":
		return apperrors.Invalid("%s cannot be less than %s", field, fe.Param())
	case "max":
		return apperrors.Invalid("%s must be at most %s characters", field, fe.Param())
	}
	return apperrors.Invalid("%s is invalid", field)
}

// fieldLabel turns a JSON field name like start_date into "Start date"
func fieldLabel(jsonName string) string {
	label := strings.ReplaceAll(jsonName, "_", " ")
	if label == "" {
		return "Field"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
