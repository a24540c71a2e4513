package solicitud

import (
	"context"
	"time"
)

type ListFilter struct {
	State  State // empty = any
	Offset int
	Limit  int
	// SortBy is one of "created_at", "amount", "state", "filing_code".
	SortBy string
	Desc   bool
}

// StateSummary is one row of the per-state distribution.
type StateSummary struct {
	State       State `json:"state"`
	Count       int64 `json:"count"`
	TotalAmount int64 `json:"total_amount"`
}

// Repository lookups return gorm.ErrRecordNotFound when nothing matches and
// gorm.ErrDuplicatedKey on unique index violations.
type Repository interface {
	Create(ctx context.Context, s *Solicitud) error
	Save(ctx context.Context, s *Solicitud) error
	GetByID(ctx context.Context, id uint64) (*Solicitud, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Solicitud, error)
	GetByToken(ctx context.Context, token string) (*Solicitud, error)
	// FindByApplicant returns the applicant's requests in any of states
	// (all requests when states is empty).
	FindByApplicant(ctx context.Context, applicantID uint64, states ...State) ([]Solicitud, error)
	// MarkValidated flips the token to validated only if it is not yet
	// validated. It reports false when another caller got there first.
	MarkValidated(ctx context.Context, id uint64, at time.Time) (bool, error)
	List(ctx context.Context, f ListFilter) ([]Solicitud, int64, error)
	// ListPendingValidation returns unvalidated requests whose token expires
	// after now, soonest expiry first.
	ListPendingValidation(ctx context.Context, now time.Time, offset, limit int) ([]Solicitud, int64, error)

	// Aggregates for the statistics endpoints.
	SummarizeByState(ctx context.Context) ([]StateSummary, error)
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
	CountApplicants(ctx context.Context) (int64, error)
}
