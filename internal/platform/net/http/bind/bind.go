// Package bind decodes request bodies and validates them with go-playground/validator,
// turning failures into project errors that carry the offending json field name
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "gscchat/internal/platform/errors"
	"gscchat/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel aliases validator.FieldLevel for custom tags
type FieldLevel = validator.FieldLevel

type engine struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	engOnce sync.Once
	eng     *engine
)

func get() *engine {
	engOnce.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		eng = &engine{v: v, trans: trans}
		// shorter than the stock wording, which varies by kind
		eng.translate("min", "{0} must be at least {1}")
		eng.translate("max", "{0} must be at most {1}")
	})
	return eng
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func (e *engine) translate(tag, message string) {
	_ = e.v.RegisterTranslation(tag, e.trans,
		func(t ut.Translator) error { return t.Add(tag, message, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// RegisterTag adds a custom validation tag with its english message.
// The message may reference the field as {0} and the tag param as {1}.
// Registering a tag again replaces it
func RegisterTag(tag, message string, fn func(FieldLevel) bool) error {
	e := get()
	if err := e.v.RegisterValidation(tag, fn); err != nil {
		return err
	}
	e.translate(tag, message)
	return nil
}

// Validate checks v against its validate tags. The first failure becomes a Validation
// error with its field set; a non-struct value is a JSON error
func Validate(v any) error {
	err := get().v.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator misuse")
		return perr.JSONErrf("validation error")
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", fe.Translate(get().trans)), fe.Field())
	}
	return perr.Newf(perr.ErrorCodeValidation, "%s", err.Error())
}

// MaxBody caps how much of a request body ParseJSON reads
const MaxBody = 1 << 20

// ParseJSON decodes exactly one JSON value from the body into T and validates it.
// Unknown fields are rejected. GET requests with no body yield the zero T
func ParseJSON[T any](r *http.Request) (T, error) {
	var zero, dst T
	if r.Body == nil || r.Body == http.NoBody {
		return emptyBody[T](r)
	}
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return emptyBody[T](r)
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

func emptyBody[T any](r *http.Request) (T, error) {
	var zero T
	if r.Method == http.MethodGet {
		return zero, nil
	}
	return zero, perr.JSONErrf("empty body")
}
