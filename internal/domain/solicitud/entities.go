package solicitud

import (
	"time"

	"creditos-backend/internal/domain/persona"

	"gorm.io/gorm"
)

type State string

const (
	StateRequest   State = "request"
	StateValidated State = "validated"
	StateApproved  State = "approved"
	StateRejected  State = "rejected"
)

const (
	TokenTTL = 15 * time.Minute

	MinAmount = 100_000
	MaxAmount = 100_000_000

	MaxNoteLen   = 500
	MaxReasonLen = 200
)

var States = []State{StateRequest, StateValidated, StateApproved, StateRejected}

func ParseState(s string) (State, bool) {
	st := State(s)
	return st, st.Valid()
}

func (s State) Valid() bool {
	switch s {
	case StateRequest, StateValidated, StateApproved, StateRejected:
		return true
	}
	return false
}

// Active reports whether a request in state s blocks a new one for the
// same applicant.
func (s State) Active() bool { return s == StateRequest || s == StateApproved }

// Token is owned by its Solicitud; it has no lifecycle of its own.
type Token struct {
	Value     string    `gorm:"column:token;size:16;not null;uniqueIndex:ux_solicitudes_token" json:"-"`
	ExpiresAt time.Time `gorm:"column:token_expires_at;not null;index" json:"expires_at"`
	Validated bool      `gorm:"column:token_validated;not null;default:false" json:"validated"`
}

func NewToken(value string, issuedAt time.Time) Token {
	return Token{Value: value, ExpiresAt: issuedAt.Add(TokenTTL)}
}

// Expired is true strictly after ExpiresAt.
func (t Token) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }

type Solicitud struct {
	ID          uint64           `gorm:"primaryKey;column:id" json:"id"`
	FilingCode  string           `gorm:"column:filing_code;size:21;not null;uniqueIndex:ux_solicitudes_filing_code" json:"filing_code"`
	ApplicantID uint64           `gorm:"column:applicant_id;not null;index" json:"applicant_id"`
	CosignerID  uint64           `gorm:"column:cosigner_id;not null;index" json:"cosigner_id"`
	Applicant   *persona.Persona `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	Cosigner    *persona.Persona `gorm:"foreignKey:CosignerID" json:"cosigner,omitempty"`
	Amount      int64            `gorm:"column:amount;not null" json:"amount"`
	Note        string           `gorm:"column:note;size:500" json:"note"`
	State       State            `gorm:"column:state;type:varchar(16);not null;default:'request';index" json:"state"`
	Token       Token            `gorm:"embedded" json:"token"`

	RejectionReason string     `gorm:"column:rejection_reason;size:200" json:"rejection_reason,omitempty"`
	ValidatedAt     *time.Time `gorm:"column:validated_at" json:"validated_at,omitempty"`
	ApprovedAt      *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	RejectedAt      *time.Time `gorm:"column:rejected_at" json:"rejected_at,omitempty"`

	// ActiveApplicantID mirrors ApplicantID while State is active and is NULL
	// otherwise; its unique index allows one active request per applicant.
	ActiveApplicantID *uint64 `gorm:"column:active_applicant_id;uniqueIndex:ux_solicitudes_active_applicant" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Solicitud) TableName() string { return "solicitudes" }

func (s *Solicitud) BeforeSave(*gorm.DB) error {
	s.SyncActiveSlot()
	return nil
}

func (s *Solicitud) SyncActiveSlot() {
	if s.State.Active() {
		id := s.ApplicantID
		s.ActiveApplicantID = &id
		return
	}
	s.ActiveApplicantID = nil
}

// ApplyState sets the state and stamps the timestamp matching the target,
// whatever the previous state was. reason is stored only when non-empty.
func (s *Solicitud) ApplyState(st State, reason string, now time.Time) {
	s.State = st
	at := now
	switch st {
	case StateValidated:
		s.ValidatedAt = &at
	case StateApproved:
		s.ApprovedAt = &at
	case StateRejected:
		s.RejectedAt = &at
	}
	if reason != "" {
		s.RejectionReason = reason
	}
	s.SyncActiveSlot()
}

// MarkValidated is the in-memory form of the token validation transition.
func (s *Solicitud) MarkValidated(now time.Time) {
	s.Token.Validated = true
	s.ApplyState(StateValidated, "", now)
}
