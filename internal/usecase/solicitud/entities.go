package solicitud

import (
	"time"

	"creditos-backend/internal/domain/persona"
	"creditos-backend/internal/domain/solicitud"
	personauc "creditos-backend/internal/usecase/persona"
	"creditos-backend/pkg/pagination"
)

type CreateInput struct {
	Applicant persona.Input
	Cosigner  persona.Input
	Amount    int64
	Note      string
}

type SetStateInput struct {
	State  string
	Reason string
}

type ListInput struct {
	State     string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // "asc" or "desc"
}

type CreateResult struct {
	RequestID  uint64               `json:"request_id"`
	FilingCode string               `json:"filing_code"`
	State      string               `json:"state"`
	Applicant  personauc.PersonaDTO `json:"applicant"`
	Cosigner   personauc.PersonaDTO `json:"cosigner"`
	CreatedAt  time.Time            `json:"created_at"`
}

type ValidationResult struct {
	RequestID   uint64    `json:"request_id"`
	FilingCode  string    `json:"filing_code"`
	State       string    `json:"state"`
	ValidatedAt time.Time `json:"validated_at"`
}

// SolicitudDTO is the full record. The token value itself is never exposed.
type SolicitudDTO struct {
	ID              uint64                `json:"id"`
	FilingCode      string                `json:"filing_code"`
	ApplicantID     uint64                `json:"applicant_id"`
	CosignerID      uint64                `json:"cosigner_id"`
	Applicant       *personauc.PersonaDTO `json:"applicant,omitempty"`
	Cosigner        *personauc.PersonaDTO `json:"cosigner,omitempty"`
	Amount          int64                 `json:"amount"`
	Note            string                `json:"note"`
	State           string                `json:"state"`
	TokenExpiresAt  time.Time             `json:"token_expires_at"`
	TokenValidated  bool                  `json:"token_validated"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	ValidatedAt     *time.Time            `json:"validated_at,omitempty"`
	ApprovedAt      *time.Time            `json:"approved_at,omitempty"`
	RejectedAt      *time.Time            `json:"rejected_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type SolicitudPage struct {
	Items      []SolicitudDTO  `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

func toDTO(s *solicitud.Solicitud, now time.Time) SolicitudDTO {
	out := SolicitudDTO{
		ID:              s.ID,
		FilingCode:      s.FilingCode,
		ApplicantID:     s.ApplicantID,
		CosignerID:      s.CosignerID,
		Amount:          s.Amount,
		Note:            s.Note,
		State:           string(s.State),
		TokenExpiresAt:  s.Token.ExpiresAt,
		TokenValidated:  s.Token.Validated,
		RejectionReason: s.RejectionReason,
		ValidatedAt:     s.ValidatedAt,
		ApprovedAt:      s.ApprovedAt,
		RejectedAt:      s.RejectedAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.Applicant != nil {
		p := personauc.ToDTO(s.Applicant, now)
		out.Applicant = &p
	}
	if s.Cosigner != nil {
		p := personauc.ToDTO(s.Cosigner, now)
		out.Cosigner = &p
	}
	return out
}

func toPage(list []solicitud.Solicitud, total int64, pg pagination.Params, now time.Time) *SolicitudPage {
	out := &SolicitudPage{Items: make([]SolicitudDTO, 0, len(list)), Pagination: pg.Meta(total)}
	for i := range list {
		out.Items = append(out.Items, toDTO(&list[i], now))
	}
	return out
}
