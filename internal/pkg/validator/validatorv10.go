package validator

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10ValidationError maps a field name to its translated message. Names are
// the json tag when present, otherwise the Go name in snake_case.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	msgs := make([]string, 0, len(vs))
	for _, field := range slices.Sorted(maps.Keys(vs)) {
		msgs = append(msgs, vs[field])
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// rule is a string format checked by a regular expression.
type rule struct {
	tag     string
	pattern *regexp.Regexp
	message string
}

var rules = []rule{
	{"phone", regexp.MustCompile(`^[0-9]{10}$`), "{0} must be exactly 10 digits"},
	{"otpcode", regexp.MustCompile(`^[0-9]{6}$`), "{0} must be exactly 6 digits"},
	{"payouthandle", regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64}$`), "{0} must look like name@bank"},
	{"letterspace", regexp.MustCompile(`^[\p{L} ]+$`), "{0} can contain only letters and spaces"},
}

func fieldName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return lo.SnakeCase(sf.Name)
	}
	return name
}

// NewV10Validator builds a validator with English messages and the phone,
// otpcode, payouthandle and letterspace tags. letterspace accepts any Unicode
// letter, unlike the built-in ASCII alphaspace.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(fieldName)

	enLang := en.New()
	trans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	for _, r := range rules {
		if err := r.register(validate, trans); err != nil {
			return nil, fmt.Errorf("validator: register %s: %w", r.tag, err)
		}
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

func (r rule) register(validate *validator.Validate, trans ut.Translator) error {
	err := validate.RegisterValidation(r.tag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && r.pattern.MatchString(s)
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation(r.tag, trans,
		func(t ut.Translator) error {
			return t.Add(r.tag, r.message, false)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Field() + " is invalid"
			}
			return msg
		},
	)
}

// Validate returns V10ValidationError when data breaks a rule. Any other
// error, such as passing a non-struct, is returned as is.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}
