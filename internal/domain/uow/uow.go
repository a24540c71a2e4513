package uow

import (
	"context"

	"creditos-backend/internal/domain/persona"
	"creditos-backend/internal/domain/solicitud"
)

type Repos struct {
	Personas    persona.Repository
	Solicitudes solicitud.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the request row first, then pass it in
	WithinSolicitudTx(ctx context.Context, id uint64, fn func(r Repos, s *solicitud.Solicitud) error) error
}
