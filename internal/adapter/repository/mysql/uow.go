package mysql

import (
	"context"

	"creditos-backend/internal/domain/solicitud"
	"creditos-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

var _ uow.UnitOfWork = (*GormUoW)(nil)

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Personas:    &PersonaRepository{db: tx},
		Solicitudes: &SolicitudRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinSolicitudTx(ctx context.Context, id uint64, fn func(r uow.Repos, s *solicitud.Solicitud) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the request row up-front so concurrent transitions serialise
		s, err := r.Solicitudes.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return fn(r, s)
	})
}
