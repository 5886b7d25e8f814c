package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

const (
	notBlankTag = "notblank"
	commentTag  = "rating_comment"

	maxBodyBytes = 1 << 20
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON field names rather than Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation(commentTag, func(fl validator.FieldLevel) bool {
		return entities.CommentAcceptable(fl.Field().String())
	})

	registerTranslation(notBlankTag, "{0} cannot be blank")
	registerTranslation(commentTag, "{0} must be empty or at least 3 characters")
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(tag, translator,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// Every failure comes back as a VALIDATION AppError.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request payload")
	}
	return validateStruct(dst)
}

func validateStruct(dst interface{}) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid request payload")
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, msg := range fieldErrs.Translate(translator) {
		messages = append(messages, msg)
	}
	sort.Strings(messages)
	return apperrors.NewValidationError(strings.Join(messages, "; "))
}
