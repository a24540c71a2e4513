package mysql

import (
	"context"
	"strings"

	"creditos-backend/internal/domain/persona"

	"gorm.io/gorm"
)

type PersonaRepository struct{ db *gorm.DB }

func NewPersonaRepository(db *gorm.DB) *PersonaRepository { return &PersonaRepository{db: db} }

var _ persona.Repository = (*PersonaRepository)(nil)

func (r *PersonaRepository) Create(ctx context.Context, p *persona.Persona) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PersonaRepository) Save(ctx context.Context, p *persona.Persona) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PersonaRepository) GetByID(ctx context.Context, id uint64) (*persona.Persona, error) {
	var out persona.Persona
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *PersonaRepository) GetByDocument(ctx context.Context, document string) (*persona.Persona, error) {
	var out persona.Persona
	res := r.db.WithContext(ctx).Where("document = ?", document).First(&out)
	return &out, res.Error
}

func (r *PersonaRepository) GetByEmail(ctx context.Context, email string) (*persona.Persona, error) {
	var out persona.Persona
	res := r.db.WithContext(ctx).Where("email = ?", email).First(&out)
	return &out, res.Error
}

func (r *PersonaRepository) List(ctx context.Context, f persona.ListFilter) ([]persona.Persona, int64, error) {
	q := r.db.WithContext(ctx).Model(&persona.Persona{}).Where("active = ?", true)
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(document) LIKE ? OR LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := []persona.Persona{}
	q = q.Order("name ASC").Order("id ASC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PersonaRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&persona.Persona{}).Where("active = ?", true).Count(&n).Error
	return n, err
}
