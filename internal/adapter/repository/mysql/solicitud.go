package mysql

import (
	"context"
	"time"

	"creditos-backend/internal/domain/solicitud"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SolicitudRepository struct{ db *gorm.DB }

func NewSolicitudRepository(db *gorm.DB) *SolicitudRepository { return &SolicitudRepository{db: db} }

var _ solicitud.Repository = (*SolicitudRepository)(nil)

var sortColumns = map[string]string{
	"created_at":  "created_at",
	"amount":      "amount",
	"state":       "state",
	"filing_code": "filing_code",
}

func (r *SolicitudRepository) withPersons(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Applicant").Preload("Cosigner")
}

// Create and Save never upsert the preloaded persons.
func (r *SolicitudRepository) Create(ctx context.Context, s *solicitud.Solicitud) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *SolicitudRepository) Save(ctx context.Context, s *solicitud.Solicitud) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

func (r *SolicitudRepository) GetByID(ctx context.Context, id uint64) (*solicitud.Solicitud, error) {
	var out solicitud.Solicitud
	res := r.withPersons(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *SolicitudRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*solicitud.Solicitud, error) {
	var out solicitud.Solicitud
	res := r.withPersons(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *SolicitudRepository) GetByToken(ctx context.Context, token string) (*solicitud.Solicitud, error) {
	var out solicitud.Solicitud
	res := r.withPersons(ctx).Where("token = ?", token).First(&out)
	return &out, res.Error
}

func (r *SolicitudRepository) FindByApplicant(ctx context.Context, applicantID uint64, states ...solicitud.State) ([]solicitud.Solicitud, error) {
	out := []solicitud.Solicitud{}
	q := r.db.WithContext(ctx).Where("applicant_id = ?", applicantID)
	if len(states) > 0 {
		q = q.Where("state IN ?", states)
	}
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}

// MarkValidated is a compare-and-set on token_validated; only one caller
// can flip it.
func (r *SolicitudRepository) MarkValidated(ctx context.Context, id uint64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Model(&solicitud.Solicitud{}).
		Where("id = ? AND token_validated = ?", id, false).
		Updates(map[string]any{
			"token_validated":     true,
			"state":               solicitud.StateValidated,
			"validated_at":        at,
			"active_applicant_id": nil,
			"updated_at":          at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&solicitud.Solicitud{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}

func (r *SolicitudRepository) List(ctx context.Context, f solicitud.ListFilter) ([]solicitud.Solicitud, int64, error) {
	q := r.db.WithContext(ctx).Model(&solicitud.Solicitud{})
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	q = q.Preload("Applicant").Preload("Cosigner").
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: f.Desc}).
		Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	out := []solicitud.Solicitud{}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *SolicitudRepository) ListPendingValidation(ctx context.Context, now time.Time, offset, limit int) ([]solicitud.Solicitud, int64, error) {
	q := r.db.WithContext(ctx).Model(&solicitud.Solicitud{}).
		Where("token_validated = ? AND token_expires_at > ?", false, now).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Applicant").Preload("Cosigner").
		Order("token_expires_at ASC").Order("id ASC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}

	out := []solicitud.Solicitud{}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *SolicitudRepository) SummarizeByState(ctx context.Context) ([]solicitud.StateSummary, error) {
	var rows []solicitud.StateSummary
	err := r.db.WithContext(ctx).Model(&solicitud.Solicitud{}).
		Select("state, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byState := make(map[solicitud.State]solicitud.StateSummary, len(rows))
	for _, row := range rows {
		byState[row.State] = row
	}
	out := make([]solicitud.StateSummary, 0, len(rows))
	for _, st := range solicitud.States {
		if row, ok := byState[st]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *SolicitudRepository) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	out := []time.Time{}
	err := r.db.WithContext(ctx).Model(&solicitud.Solicitud{}).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &out).Error
	return out, err
}

func (r *SolicitudRepository) CountApplicants(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&solicitud.Solicitud{}).Distinct("applicant_id").Count(&n).Error
	return n, err
}
