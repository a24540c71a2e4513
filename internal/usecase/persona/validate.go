package persona

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"creditos-backend/internal/domain/apperr"
	"creditos-backend/internal/domain/persona"
)

var reEmail = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

const (
	minDocument, maxDocument = 5, 20
	minName, maxName         = 2, 100
	minPhone, maxPhone       = 7, 15
)

// ValidatePersona checks every field of in and reports all failures in a
// single ValidationError.
func ValidatePersona(in persona.Input, now time.Time) error {
	var errs []string

	if n := utf8.RuneCountInString(in.Document); n < minDocument || n > maxDocument {
		errs = append(errs, "document must be between 5 and 20 characters")
	}
	errs = append(errs, ContactErrors(in, now)...)

	if len(errs) > 0 {
		return apperr.Validation(strings.Join(errs, ", "))
	}
	return nil
}

// ContactErrors applies the name, email, phone and birth date rules and
// returns one message per failing field. The document is not checked.
func ContactErrors(in persona.Input, now time.Time) []string {
	var errs []string
	errs = appendNameErr(errs, in.Name)
	if !reEmail.MatchString(in.Email) || len(in.Email) > 120 {
		errs = append(errs, "email must be a valid address")
	}
	errs = appendPhoneErr(errs, in.Phone)
	return appendBirthDateErr(errs, in.BirthDate, now)
}

func validateUpdate(in UpdateInput, now time.Time) error {
	var errs []string
	if in.Name != nil {
		errs = appendNameErr(errs, strings.TrimSpace(*in.Name))
	}
	if in.Phone != nil {
		errs = appendPhoneErr(errs, strings.TrimSpace(*in.Phone))
	}
	if in.BirthDate != nil {
		errs = appendBirthDateErr(errs, *in.BirthDate, now)
	}
	if len(errs) > 0 {
		return apperr.Validation(strings.Join(errs, ", "))
	}
	return nil
}

func appendNameErr(errs []string, name string) []string {
	if n := utf8.RuneCountInString(name); n < minName || n > maxName {
		return append(errs, "name must be between 2 and 100 characters")
	}
	return errs
}

func appendPhoneErr(errs []string, phone string) []string {
	if n := len(phone); n < minPhone || n > maxPhone {
		return append(errs, "phone must be between 7 and 15 characters")
	}
	return errs
}

func appendBirthDateErr(errs []string, birth, now time.Time) []string {
	switch {
	case birth.IsZero():
		return append(errs, "birth date is required")
	case !birth.Before(now):
		return append(errs, "birth date must be in the past")
	}
	return errs
}
