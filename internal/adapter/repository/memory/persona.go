package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"creditos-backend/internal/domain/persona"
)

type PersonaRepository struct{ s *Store }

var _ persona.Repository = (*PersonaRepository)(nil)

// conflicts reports whether p collides with a stored persona other than itself.
func (r *PersonaRepository) conflicts(p *persona.Persona) bool {
	for id, cur := range r.s.personas {
		if id == p.ID {
			continue
		}
		if cur.Document == p.Document || cur.Email == p.Email {
			return true
		}
	}
	return false
}

func (r *PersonaRepository) Create(ctx context.Context, p *persona.Persona) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.conflicts(p) {
		return errDuplicate
	}
	r.s.lastPersona++
	p.ID = r.s.lastPersona
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.personas[p.ID] = *p
	return nil
}

func (r *PersonaRepository) Save(ctx context.Context, p *persona.Persona) error {
	if p.ID == 0 {
		return r.Create(ctx, p)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.conflicts(p) {
		return errDuplicate
	}
	p.UpdatedAt = r.s.now()
	r.s.personas[p.ID] = *p
	return nil
}

func (r *PersonaRepository) GetByID(ctx context.Context, id uint64) (*persona.Persona, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.personas[id]
	if !ok {
		return nil, errNotFound
	}
	return &p, nil
}

func (r *PersonaRepository) find(match func(persona.Persona) bool) (*persona.Persona, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.personas {
		if match(p) {
			return &p, nil
		}
	}
	return nil, errNotFound
}

func (r *PersonaRepository) GetByDocument(ctx context.Context, document string) (*persona.Persona, error) {
	return r.find(func(p persona.Persona) bool { return p.Document == document })
}

func (r *PersonaRepository) GetByEmail(ctx context.Context, email string) (*persona.Persona, error) {
	return r.find(func(p persona.Persona) bool { return p.Email == email })
}

func (r *PersonaRepository) List(ctx context.Context, f persona.ListFilter) ([]persona.Persona, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(f.Search)
	out := make([]persona.Persona, 0, len(r.s.personas))
	for _, p := range r.s.personas {
		if !p.Active {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Document), needle) &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Email), needle) {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b persona.Persona) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return page(out, f.Offset, f.Limit), int64(len(out)), nil
}

func (r *PersonaRepository) CountActive(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.personas {
		if p.Active {
			n++
		}
	}
	return n, nil
}
