package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"creditos-backend/internal/domain/solicitud"
)

type SolicitudRepository struct{ s *Store }

var _ solicitud.Repository = (*SolicitudRepository)(nil)

func (r *SolicitudRepository) conflicts(x *solicitud.Solicitud) bool {
	for id, cur := range r.s.solicitudes {
		if id == x.ID {
			continue
		}
		if cur.FilingCode == x.FilingCode || cur.Token.Value == x.Token.Value {
			return true
		}
		if x.ActiveApplicantID != nil && cur.ActiveApplicantID != nil &&
			*cur.ActiveApplicantID == *x.ActiveApplicantID {
			return true
		}
	}
	return false
}

// put stores a detached copy without the preloaded associations.
func (r *SolicitudRepository) put(x *solicitud.Solicitud) {
	cp := *x
	cp.Applicant, cp.Cosigner = nil, nil
	r.s.solicitudes[cp.ID] = cp
}

// hydrate returns a copy with applicant and co-signer attached.
func (r *SolicitudRepository) hydrate(x solicitud.Solicitud) solicitud.Solicitud {
	if p, ok := r.s.personas[x.ApplicantID]; ok {
		x.Applicant = &p
	}
	if p, ok := r.s.personas[x.CosignerID]; ok {
		x.Cosigner = &p
	}
	return x
}

func (r *SolicitudRepository) Create(ctx context.Context, x *solicitud.Solicitud) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	x.SyncActiveSlot()
	if r.conflicts(x) {
		return errDuplicate
	}
	r.s.lastSolic++
	x.ID = r.s.lastSolic
	now := r.s.now()
	if x.CreatedAt.IsZero() {
		x.CreatedAt = now
	}
	x.UpdatedAt = now
	r.put(x)
	return nil
}

func (r *SolicitudRepository) Save(ctx context.Context, x *solicitud.Solicitud) error {
	if x.ID == 0 {
		return r.Create(ctx, x)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	x.SyncActiveSlot()
	if r.conflicts(x) {
		return errDuplicate
	}
	x.UpdatedAt = r.s.now()
	r.put(x)
	return nil
}

func (r *SolicitudRepository) GetByID(ctx context.Context, id uint64) (*solicitud.Solicitud, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	x, ok := r.s.solicitudes[id]
	if !ok {
		return nil, errNotFound
	}
	out := r.hydrate(x)
	return &out, nil
}

// GetByIDForUpdate relies on the UnitOfWork's tx mutex for exclusion.
func (r *SolicitudRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*solicitud.Solicitud, error) {
	return r.GetByID(ctx, id)
}

func (r *SolicitudRepository) GetByToken(ctx context.Context, token string) (*solicitud.Solicitud, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, x := range r.s.solicitudes {
		if x.Token.Value == token {
			out := r.hydrate(x)
			return &out, nil
		}
	}
	return nil, errNotFound
}

func (r *SolicitudRepository) FindByApplicant(ctx context.Context, applicantID uint64, states ...solicitud.State) ([]solicitud.Solicitud, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []solicitud.Solicitud{}
	for _, x := range r.s.solicitudes {
		if x.ApplicantID != applicantID {
			continue
		}
		if len(states) > 0 && !slices.Contains(states, x.State) {
			continue
		}
		out = append(out, x)
	}
	slices.SortFunc(out, func(a, b solicitud.Solicitud) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *SolicitudRepository) MarkValidated(ctx context.Context, id uint64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	x, ok := r.s.solicitudes[id]
	if !ok {
		return false, errNotFound
	}
	if x.Token.Validated {
		return false, nil
	}
	x.MarkValidated(at)
	x.UpdatedAt = r.s.now()
	r.s.solicitudes[id] = x
	return true, nil
}

func compareBy(field string) func(a, b solicitud.Solicitud) int {
	switch field {
	case "amount":
		return func(a, b solicitud.Solicitud) int { return cmp.Compare(a.Amount, b.Amount) }
	case "state":
		return func(a, b solicitud.Solicitud) int { return cmp.Compare(a.State, b.State) }
	case "filing_code":
		return func(a, b solicitud.Solicitud) int { return cmp.Compare(a.FilingCode, b.FilingCode) }
	default:
		return func(a, b solicitud.Solicitud) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

func (r *SolicitudRepository) List(ctx context.Context, f solicitud.ListFilter) ([]solicitud.Solicitud, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]solicitud.Solicitud, 0, len(r.s.solicitudes))
	for _, x := range r.s.solicitudes {
		if f.State != "" && x.State != f.State {
			continue
		}
		out = append(out, r.hydrate(x))
	}
	by := compareBy(f.SortBy)
	slices.SortFunc(out, func(a, b solicitud.Solicitud) int {
		c := cmp.Or(by(a, b), cmp.Compare(a.ID, b.ID))
		if f.Desc {
			return -c
		}
		return c
	})
	return page(out, f.Offset, f.Limit), int64(len(out)), nil
}

func (r *SolicitudRepository) ListPendingValidation(ctx context.Context, now time.Time, offset, limit int) ([]solicitud.Solicitud, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []solicitud.Solicitud{}
	for _, x := range r.s.solicitudes {
		if x.Token.Validated || !x.Token.ExpiresAt.After(now) {
			continue
		}
		out = append(out, r.hydrate(x))
	}
	slices.SortFunc(out, func(a, b solicitud.Solicitud) int {
		return cmp.Or(a.Token.ExpiresAt.Compare(b.Token.ExpiresAt), cmp.Compare(a.ID, b.ID))
	})
	return page(out, offset, limit), int64(len(out)), nil
}

func (r *SolicitudRepository) SummarizeByState(ctx context.Context) ([]solicitud.StateSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byState := map[solicitud.State]*solicitud.StateSummary{}
	for _, x := range r.s.solicitudes {
		sum, ok := byState[x.State]
		if !ok {
			sum = &solicitud.StateSummary{State: x.State}
			byState[x.State] = sum
		}
		sum.Count++
		sum.TotalAmount += x.Amount
	}
	out := make([]solicitud.StateSummary, 0, len(byState))
	for _, st := range solicitud.States {
		if sum, ok := byState[st]; ok {
			out = append(out, *sum)
		}
	}
	return out, nil
}

func (r *SolicitudRepository) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []time.Time{}
	for _, x := range r.s.solicitudes {
		if !x.CreatedAt.Before(since) {
			out = append(out, x.CreatedAt)
		}
	}
	slices.SortFunc(out, time.Time.Compare)
	return out, nil
}

func (r *SolicitudRepository) CountApplicants(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := map[uint64]struct{}{}
	for _, x := range r.s.solicitudes {
		seen[x.ApplicantID] = struct{}{}
	}
	return int64(len(seen)), nil
}
