package solicitud

import (
	"creditos-backend/internal/domain/apperr"
	"creditos-backend/internal/domain/persona"
	"creditos-backend/internal/domain/solicitud"
)

const msgActiveExists = "applicant already has a request in progress or approved"

// CheckEligibility runs the pre-creation rules in order and returns the first
// failure. existing is the applicant's stored record, nil for a first-time
// applicant; active holds that record's requests in an active state.
//
// The email-validated rule only applies to an existing applicant, so a
// first-time applicant is never asked to prove their address up front.
func CheckEligibility(applicant, cosigner persona.Input, existing *persona.Persona, active []solicitud.Solicitud) error {
	switch {
	case applicant.Document == cosigner.Document:
		return apperr.Validation("applicant and co-signer cannot be the same person")
	case applicant.Email == cosigner.Email:
		return apperr.Validation("applicant and co-signer cannot share an email")
	case applicant.Phone == cosigner.Phone:
		return apperr.Validation("applicant and co-signer cannot share a phone number")
	}

	if existing == nil {
		return nil
	}
	if !existing.EmailValidated {
		return apperr.Validation("applicant email is not validated")
	}
	if len(active) > 0 {
		return apperr.Conflict(msgActiveExists)
	}
	return nil
}

// DetermineInitialState picks the starting state from the applicant's
// request history: Conflict while any is active, rejected when a previous
// one was rejected, request otherwise.
func DetermineInitialState(history []solicitud.Solicitud) (solicitud.State, error) {
	rejected := false
	for _, s := range history {
		if s.State.Active() {
			return "", apperr.Conflict(msgActiveExists)
		}
		if s.State == solicitud.StateRejected {
			rejected = true
		}
	}
	if rejected {
		return solicitud.StateRejected, nil
	}
	return solicitud.StateRequest, nil
}
