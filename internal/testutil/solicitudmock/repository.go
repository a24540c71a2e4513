package solicitudmock

import (
	"context"
	"time"

	domain "creditos-backend/internal/domain/solicitud"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes with no func set are no-ops; reads return context.Canceled.
type Repo struct {
	CreateFn                func(ctx context.Context, s *domain.Solicitud) error
	SaveFn                  func(ctx context.Context, s *domain.Solicitud) error
	GetByIDFn               func(ctx context.Context, id uint64) (*domain.Solicitud, error)
	GetByIDForUpdateFn      func(ctx context.Context, id uint64) (*domain.Solicitud, error)
	GetByTokenFn            func(ctx context.Context, token string) (*domain.Solicitud, error)
	FindByApplicantFn       func(ctx context.Context, applicantID uint64, states ...domain.State) ([]domain.Solicitud, error)
	MarkValidatedFn         func(ctx context.Context, id uint64, at time.Time) (bool, error)
	ListFn                  func(ctx context.Context, f domain.ListFilter) ([]domain.Solicitud, int64, error)
	ListPendingValidationFn func(ctx context.Context, now time.Time, offset, limit int) ([]domain.Solicitud, int64, error)
	SummarizeByStateFn      func(ctx context.Context) ([]domain.StateSummary, error)
	CreatedSinceFn          func(ctx context.Context, since time.Time) ([]time.Time, error)
	CountApplicantsFn       func(ctx context.Context) (int64, error)
}

func (m *Repo) Create(ctx context.Context, s *domain.Solicitud) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, s)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, s *domain.Solicitud) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, s)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Solicitud, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Solicitud, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByToken(ctx context.Context, token string) (*domain.Solicitud, error) {
	if m.GetByTokenFn != nil {
		return m.GetByTokenFn(ctx, token)
	}
	return nil, context.Canceled
}

func (m *Repo) FindByApplicant(ctx context.Context, applicantID uint64, states ...domain.State) ([]domain.Solicitud, error) {
	if m.FindByApplicantFn != nil {
		return m.FindByApplicantFn(ctx, applicantID, states...)
	}
	return nil, context.Canceled
}

func (m *Repo) MarkValidated(ctx context.Context, id uint64, at time.Time) (bool, error) {
	if m.MarkValidatedFn != nil {
		return m.MarkValidatedFn(ctx, id, at)
	}
	return false, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Solicitud, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, context.Canceled
}

func (m *Repo) ListPendingValidation(ctx context.Context, now time.Time, offset, limit int) ([]domain.Solicitud, int64, error) {
	if m.ListPendingValidationFn != nil {
		return m.ListPendingValidationFn(ctx, now, offset, limit)
	}
	return nil, 0, context.Canceled
}

func (m *Repo) SummarizeByState(ctx context.Context) ([]domain.StateSummary, error) {
	if m.SummarizeByStateFn != nil {
		return m.SummarizeByStateFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	if m.CreatedSinceFn != nil {
		return m.CreatedSinceFn(ctx, since)
	}
	return nil, context.Canceled
}

func (m *Repo) CountApplicants(ctx context.Context) (int64, error) {
	if m.CountApplicantsFn != nil {
		return m.CountApplicantsFn(ctx)
	}
	return 0, context.Canceled
}
