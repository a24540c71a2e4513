package stats

import (
	"context"
	"time"

	"creditos-backend/internal/domain/persona"
	"creditos-backend/internal/domain/solicitud"
)

// Months is the length of the rolling window ByMonth covers.
const Months = 6

type Usecase struct {
	personas    persona.Repository
	solicitudes solicitud.Repository
	now         func() time.Time
}

func NewUsecase(personas persona.Repository, solicitudes solicitud.Repository) *Usecase {
	return &Usecase{
		personas:    personas,
		solicitudes: solicitudes,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

type GeneralDTO struct {
	Total          int64                    `json:"total"`
	Approved       int64                    `json:"approved"`
	Rejected       int64                    `json:"rejected"`
	Pending        int64                    `json:"pending"`
	ApprovedAmount int64                    `json:"approved_amount"`
	ByState        []solicitud.StateSummary `json:"by_state"`
	ByMonth        []MonthCount             `json:"by_month"`
}

type PersonsDTO struct {
	Active          int64 `json:"active"`
	WithRequests    int64 `json:"with_requests"`
	WithoutRequests int64 `json:"without_requests"`
}

func (u *Usecase) General(ctx context.Context) (*GeneralDTO, error) {
	sums, err := u.solicitudes.SummarizeByState(ctx)
	if err != nil {
		return nil, err
	}

	out := &GeneralDTO{ByState: sums}
	for _, s := range sums {
		out.Total += s.Count
		switch s.State {
		case solicitud.StateApproved:
			out.Approved = s.Count
			out.ApprovedAmount = s.TotalAmount
		case solicitud.StateRejected:
			out.Rejected = s.Count
		case solicitud.StateRequest, solicitud.StateValidated:
			out.Pending += s.Count
		}
	}

	since := u.now().AddDate(0, -Months, 0)
	created, err := u.solicitudes.CreatedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	out.ByMonth = bucketByMonth(created)
	return out, nil
}

// bucketByMonth counts timestamps per calendar month (UTC), oldest first,
// skipping empty months. Input must be sorted ascending.
func bucketByMonth(ts []time.Time) []MonthCount {
	out := []MonthCount{}
	for _, t := range ts {
		key := t.UTC().Format("2006-01")
		if n := len(out); n > 0 && out[n-1].Month == key {
			out[n-1].Count++
			continue
		}
		out = append(out, MonthCount{Month: key, Count: 1})
	}
	return out
}

func (u *Usecase) Persons(ctx context.Context) (*PersonsDTO, error) {
	active, err := u.personas.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	with, err := u.solicitudes.CountApplicants(ctx)
	if err != nil {
		return nil, err
	}
	// applicants may include deactivated persons
	without := max(active-with, 0)
	return &PersonsDTO{Active: active, WithRequests: with, WithoutRequests: without}, nil
}
