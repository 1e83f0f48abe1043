package core

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validate and Translator exist before any init of the package runs.
var Validate, Translator = newValidator()

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^\w+$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"

	notBlankTag = "notblank"

	trimMinTag  = "trimmin"
	trimMinText = "{0} must be at least {1} characters"

	matricTag   = "matric"
	matricText  = "Matric number must be 6 digits"
	matricRegex = regexp.MustCompile(`^\d{6}$`)

	phoneTag   = "ngphone"
	phoneText  = "Please enter a valid Nigerian phone number"
	phoneRegex = regexp.MustCompile(`^(\+234|0)[789]\d{9}$`)

	emailTag   = "looseemail"
	emailText  = "Please enter a valid email address"
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	levelTag  = "level"
	levelText = "Please select your academic level"

	dateTag  = "datetime"
	dateText = "{0} must be a date formatted as {1}"
)

// Levels are the academic levels a student can be in.
var Levels = []int{100, 200, 300, 400, 500}

func newValidator() (*validator.Validate, ut.Translator) {
	v := validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// Use JSON (or form) tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v, trans
}

func init() {
	// register custom validators
	_ = Validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(alphaNumUnderTag, alphaNumUnderText)

	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(notBlankTag, requiredText)

	_ = Validate.RegisterValidation(trimMinTag, trimMinValidation)
	RegisterCustomTranslation(trimMinTag, trimMinText)

	_ = Validate.RegisterValidation(matricTag, matricValidation)
	RegisterCustomTranslation(matricTag, matricText)

	_ = Validate.RegisterValidation(phoneTag, phoneValidation)
	RegisterCustomTranslation(phoneTag, phoneText)

	_ = Validate.RegisterValidation(emailTag, emailValidation)
	RegisterCustomTranslation(emailTag, emailText)

	_ = Validate.RegisterValidation(levelTag, levelValidation)
	RegisterCustomTranslation(levelTag, levelText)

	RegisterCustomTranslation(dateTag, dateText, true)
	RegisterCustomTranslation(requiredTag, requiredText, true)
	RegisterCustomTranslation(requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
// Texts may reference the field name as {0} and the tag parameter as {1}.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// TranslateErrors maps each failing field to its translated message.
func TranslateErrors(errs validator.ValidationErrors) map[string]string {
	fldErrs := make(map[string]string, len(errs))
	for _, vErr := range errs {
		fldErrs[vErr.Field()] = vErr.Translate(Translator)
	}
	return fldErrs
}

// IsMatric reports whether the trimmed value is exactly 6 digits.
func IsMatric(s string) bool {
	return matricRegex.MatchString(strings.TrimSpace(s))
}

// IsNigerianPhone reports whether the value, stripped of whitespace, is a Nigerian mobile number.
func IsNigerianPhone(s string) bool {
	return phoneRegex.MatchString(StripSpaces(s))
}

func IsEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

func IsLevel(level int) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// trimMinValidation counts runes after trimming surrounding whitespace.
func trimMinValidation(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

func matricValidation(fl validator.FieldLevel) bool {
	return IsMatric(fl.Field().String())
}

func phoneValidation(fl validator.FieldLevel) bool {
	return IsNigerianPhone(fl.Field().String())
}

func emailValidation(fl validator.FieldLevel) bool {
	return IsEmail(fl.Field().String())
}

func levelValidation(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		level, err := strconv.Atoi(strings.TrimSpace(field.String()))
		return err == nil && IsLevel(level)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IsLevel(int(field.Int()))
	}
	return false
}
