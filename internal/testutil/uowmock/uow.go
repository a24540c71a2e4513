package uowmock

import (
	"context"
	"errors"

	"creditos-backend/internal/domain/solicitud"
	"creditos-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn          func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinSolicitudTxFn func(ctx context.Context, id uint64, fn func(r uow.Repos, s *solicitud.Solicitud) error) error
}

func New() *UoW { return &UoW{} }

func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}

func (m *UoW) WithWithinSolicitudTx(fn func(context.Context, uint64, func(uow.Repos, *solicitud.Solicitud) error) error) *UoW {
	m.WithinSolicitudTxFn = fn
	return m
}

// Passthrough wires both methods to run fn directly against repos, handing
// locked to WithinSolicitudTx callers.
func Passthrough(repos uow.Repos, locked *solicitud.Solicitud) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinSolicitudTxFn: func(_ context.Context, _ uint64, fn func(uow.Repos, *solicitud.Solicitud) error) error {
			return fn(repos, locked)
		},
	}
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinSolicitudTx(ctx context.Context, id uint64, fn func(r uow.Repos, s *solicitud.Solicitud) error) error {
	if m.WithinSolicitudTxFn != nil {
		return m.WithinSolicitudTxFn(ctx, id, fn)
	}
	return errUnimplemented
}
