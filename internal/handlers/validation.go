package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/Dias221467/social-connect/pkg/logger"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the body of PUT /api/users/me.
type UpdateProfileRequest struct {
	Name *string `json:"name" validate:"omitempty,max=100"`
	Bio  *string `json:"bio"  validate:"omitempty,max=500"`
}

// FieldError is one entry of a validation failure response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// fieldMessages overrides the translator for the rules clients rely on.
var fieldMessages = map[string]string{
	"name.required":     "Name is required",
	"email.required":    "Please include a valid email",
	"email.email":       "Please include a valid email",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters long",
}

// Validator checks request bodies and renders failures in English.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator builds a Validator that reports fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	trans, found := ut.New(english, english).GetTranslator(english.Locale())
	if !found {
		logger.Log.WithField("locale", english.Locale()).Warn("Validation translator not found, using fallback")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		logger.Log.WithError(err).Error("Failed to register validation translations")
	}

	return &Validator{validate: v, trans: trans}
}

// Struct validates s and returns the failing fields, or nil.
func (v *Validator) Struct(s interface{}) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Translate(v.trans)
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
