package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/cybershield/internal/pkg/strcase"
)

// bcrypt ignores input past 72 bytes, so longer passwords are refused.
const maxPasswordBytes = 72

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerCustom(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{validate: validate, translator: enTrans}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	errV10 := make(V10ValidationError, len(validateErrs))
	for _, fe := range validateErrs {
		errV10[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}

	return errV10
}

type rule struct {
	tag     string
	message string
	fn      validator.Func
}

func registerCustom(validate *validator.Validate, trans ut.Translator) error {
	rules := []rule{
		{
			tag:     "password",
			message: "{0} must be 1-72 bytes long",
			fn: func(fl validator.FieldLevel) bool {
				n := len(fl.Field().String())
				return n > 0 && n <= maxPasswordBytes
			},
		},
		{
			tag:     "printable",
			message: "{0} must not contain control characters",
			fn: func(fl validator.FieldLevel) bool {
				for _, r := range fl.Field().String() {
					if unicode.IsControl(r) {
						return false
					}
				}
				return true
			},
		},
	}

	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.fn); err != nil {
			return err
		}

		msg := r.message
		err := validate.RegisterTranslation(r.tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(r.tag, msg, false)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					slog.Warn("validation translation failed", "tag", fe.Tag(), "error", err)
					return fe.Error()
				}
				return t
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}
