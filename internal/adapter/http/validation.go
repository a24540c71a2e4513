package http

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	personauc "creditos-backend/internal/usecase/persona"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	reDocID = regexp.MustCompile(`^[0-9A-Za-z-]{5,20}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9 -]{7,15}$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// identity document: 5-20 letters, digits or dashes
	_ = v.RegisterValidation("docid", func(fl validator.FieldLevel) bool {
		return reDocID.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return rePhone.MatchString(fl.Field().String())
	})
	// YYYY-MM-DD strictly before today
	_ = v.RegisterValidation("past", func(fl validator.FieldLevel) bool {
		d, err := time.Parse(personauc.DateLayout, fl.Field().String())
		return err == nil && d.Before(time.Now().UTC())
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// ToFieldErrors turns validator errors into FieldError entries with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := fieldPath(e)
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "docid":
			out = append(out, FieldError{Field: field, Message: "must be 5-20 letters, digits or dashes"})
		case "phone":
			out = append(out, FieldError{Field: field, Message: "must be 7-15 digits"})
		case "past":
			out = append(out, FieldError{Field: field, Message: "must be a past date in YYYY-MM-DD format"})
		case "email":
			out = append(out, FieldError{Field: field, Message: "must be a valid email address"})
		case "min":
			out = append(out, FieldError{Field: field, Message: "must be at least " + e.Param()})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}

// fieldPath drops the root struct name: "createSolicitudReq.applicant.email"
// becomes "applicant.email".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}
