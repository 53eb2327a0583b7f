package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/stemsi/studygroups-backend/internal/model"
)

// trans is the singleton English translator for validation errors.
var (
	trans     ut.Translator
	setupOnce sync.Once
	setupErr  error
)

// Setup registers the validator with English translations and the custom tags
// (notblank, between, subject) on Gin's binding engine. Safe to call more than
// once; every call returns the result of the first.
func Setup() error {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			setupErr = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		trans, setupErr = register(v)
	})
	return setupErr
}

// register installs field naming, translations and custom tags on v and
// returns the translator the messages were registered with.
func register(v *govalidator.Validate) (ut.Translator, error) {
	// Use the JSON tag for field names, falling back to the form tag for query structs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	tr, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("english translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, tr); err != nil {
		return nil, fmt.Errorf("register default translations: %w", err)
	}

	validations := map[string]govalidator.Func{
		"notblank": notBlank,
		"between":  between,
		"subject":  subject,
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s validation: %w", tag, err)
		}
	}

	messages := []struct {
		tag    string
		text   string
		params paramsFunc
	}{
		{"required", "'{0}' must not be empty.", fieldOnly},
		{"notblank", "'{0}' must not be empty.", fieldOnly},
		{"between", "'{0}' must be between {1} and {2} characters. You entered {3} characters.", betweenParams},
		{"subject", "Specified {0} should be one of the following values: '{1}'.", subjectParams},
		{"gt", "'{0}' must be greater than '{1}'.", fieldAndParam},
	}
	for _, m := range messages {
		if err := registerMessage(v, tr, m.tag, m.text, m.params); err != nil {
			return nil, fmt.Errorf("register %s message: %w", m.tag, err)
		}
	}
	return tr, nil
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans != nil {
				fields[fe.Field()] = fe.Translate(trans)
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error or a non-numeric query id).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery binds and validates query parameters into dst.
func BindQuery(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindURI binds and validates path parameters into dst.
func BindURI(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindUri(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// ─── Custom validations ─────────────────────────────────────────────────

func notBlank(fl govalidator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(f.String()) != ""
}

// between checks the rune length of a string against "min max".
func between(fl govalidator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	lo, hi, err := parseRange(fl.Param())
	if err != nil {
		panic(fmt.Sprintf("validator: bad between param %q: %v", fl.Param(), err))
	}
	n := utf8.RuneCountInString(f.String())
	return n >= lo && n <= hi
}

func subject(fl govalidator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	_, err := model.ParseSubject(f.String())
	return err == nil
}

func parseRange(param string) (int, int, error) {
	parts := strings.Fields(param)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want two bounds, got %d", len(parts))
	}
	lo, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	hi, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// ─── Translations ───────────────────────────────────────────────────────

type paramsFunc func(fe govalidator.FieldError) []string

func registerMessage(v *govalidator.Validate, tr ut.Translator, tag, text string, params paramsFunc) error {
	return v.RegisterTranslation(tag, tr,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe govalidator.FieldError) string {
			msg, err := t.T(tag, params(fe)...)
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

func fieldOnly(fe govalidator.FieldError) []string {
	return []string{fe.Field()}
}

func fieldAndParam(fe govalidator.FieldError) []string {
	return []string{fe.Field(), fe.Param()}
}

func betweenParams(fe govalidator.FieldError) []string {
	lo, hi, _ := parseRange(fe.Param())
	entered := 0
	if s, ok := fe.Value().(string); ok {
		entered = utf8.RuneCountInString(s)
	}
	return []string{fe.Field(), strconv.Itoa(lo), strconv.Itoa(hi), strconv.Itoa(entered)}
}

func subjectParams(fe govalidator.FieldError) []string {
	return []string{fe.Field(), strings.Join(model.SubjectNames(), ",")}
}
