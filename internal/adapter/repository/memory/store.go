// Package memory keeps personas and solicitudes in process memory. It honours
// the same unique constraints as the SQL schema and is used with STORE=memory
// and in usecase tests.
package memory

import (
	"context"
	"sync"
	"time"

	"creditos-backend/internal/domain/persona"
	"creditos-backend/internal/domain/solicitud"
	"creditos-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	personas    map[uint64]persona.Persona
	solicitudes map[uint64]solicitud.Solicitud
	lastPersona uint64
	lastSolic   uint64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		personas:    make(map[uint64]persona.Persona),
		solicitudes: make(map[uint64]solicitud.Solicitud),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Personas() *PersonaRepository       { return &PersonaRepository{s: s} }
func (s *Store) Solicitudes() *SolicitudRepository { return &SolicitudRepository{s: s} }
func (s *Store) UnitOfWork() *UnitOfWork           { return &UnitOfWork{s: s} }

// UnitOfWork serialises transactions. Writes are applied immediately, so an
// error returned from fn does not roll anything back.
type UnitOfWork struct{ s *Store }

var _ uow.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) repos() uow.Repos {
	return uow.Repos{Personas: u.s.Personas(), Solicitudes: u.s.Solicitudes()}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	u.s.txMu.Lock()
	defer u.s.txMu.Unlock()
	return fn(u.repos())
}

func (u *UnitOfWork) WithinSolicitudTx(ctx context.Context, id uint64, fn func(r uow.Repos, s *solicitud.Solicitud) error) error {
	u.s.txMu.Lock()
	defer u.s.txMu.Unlock()

	r := u.repos()
	sol, err := r.Solicitudes.GetByIDForUpdate(ctx, id)
	if err != nil {
		return err
	}
	return fn(r, sol)
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

var (
	errNotFound  = gorm.ErrRecordNotFound
	errDuplicate = gorm.ErrDuplicatedKey
)
