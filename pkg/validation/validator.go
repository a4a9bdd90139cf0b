package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "talkbot-gateway/pkg/errors"
)

// CustomValidator wraps validator.Validate for echo and for the services.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.ValidateStruct(i)
}

// ValidateStruct checks i and reports the first failing field, in declaration order, as a ValidationError.
func (cv *CustomValidator) ValidateStruct(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(fe.Field(), "%s", messageFor(fe))
	}
	return err
}

// New builds the validator with null type support and the custom rules registered.
func New() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)

	registerNullTypes(v)

	if err := registerRules(v); err != nil {
		panic("failed to register validation rules: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

// fieldName reports fields by their wire name so messages match what the client sent.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "query", "param"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "webhook_url":
		return fe.Field() + " must be an absolute http(s) URL"
	case "e164":
		return fe.Field() + " must be in E.164 format"
	case "iso3166_1_alpha2":
		return fe.Field() + " must be an ISO 3166-1 alpha-2 country code"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	}
	return fe.Field() + " is invalid"
}
