package personamock

import (
	"context"

	domain "creditos-backend/internal/domain/persona"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Lookups with no func set return context.Canceled.
type Repo struct {
	CreateFn        func(ctx context.Context, p *domain.Persona) error
	SaveFn          func(ctx context.Context, p *domain.Persona) error
	GetByIDFn       func(ctx context.Context, id uint64) (*domain.Persona, error)
	GetByDocumentFn func(ctx context.Context, document string) (*domain.Persona, error)
	GetByEmailFn    func(ctx context.Context, email string) (*domain.Persona, error)
	ListFn          func(ctx context.Context, f domain.ListFilter) ([]domain.Persona, int64, error)
	CountActiveFn   func(ctx context.Context) (int64, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Persona) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, p *domain.Persona) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Persona, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByDocument(ctx context.Context, document string) (*domain.Persona, error) {
	if m.GetByDocumentFn != nil {
		return m.GetByDocumentFn(ctx, document)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByEmail(ctx context.Context, email string) (*domain.Persona, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Persona, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, context.Canceled
}

func (m *Repo) CountActive(ctx context.Context) (int64, error) {
	if m.CountActiveFn != nil {
		return m.CountActiveFn(ctx)
	}
	return 0, context.Canceled
}
