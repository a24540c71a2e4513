package persona

import (
	"context"
	"errors"
	"strings"
	"time"

	"creditos-backend/internal/domain/apperr"
	"creditos-backend/internal/domain/persona"
	"creditos-backend/pkg/pagination"

	"gorm.io/gorm"
)

const msgDuplicate = "a person with this document or email already exists"

type Usecase struct {
	repo persona.Repository
	now  func() time.Time
}

func NewUsecase(r persona.Repository) *Usecase {
	return &Usecase{repo: r, now: func() time.Time { return time.Now().UTC() }}
}

func (u *Usecase) Create(ctx context.Context, in persona.Input) (*PersonaDTO, error) {
	in = in.Normalize()
	now := u.now()
	if err := ValidatePersona(in, now); err != nil {
		return nil, err
	}

	for _, lookup := range []func() (*persona.Persona, error){
		func() (*persona.Persona, error) { return u.repo.GetByDocument(ctx, in.Document) },
		func() (*persona.Persona, error) { return u.repo.GetByEmail(ctx, in.Email) },
	} {
		_, err := lookup()
		switch {
		case err == nil:
			return nil, apperr.Validation(msgDuplicate)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	p := in.NewPersona()
	if err := u.repo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation(msgDuplicate)
		}
		return nil, err
	}
	dto := ToDTO(p, now)
	return &dto, nil
}

func (u *Usecase) find(ctx context.Context, id uint64) (*persona.Persona, error) {
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("persona not found")
		}
		return nil, err
	}
	return p, nil
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*PersonaDTO, error) {
	p, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(p, u.now())
	return &dto, nil
}

func (u *Usecase) List(ctx context.Context, in ListInput) (*PersonaPage, error) {
	pg := pagination.New(in.Page, in.Limit)
	list, total, err := u.repo.List(ctx, persona.ListFilter{
		Search: strings.TrimSpace(in.Search),
		Offset: pg.Offset(),
		Limit:  pg.Limit,
	})
	if err != nil {
		return nil, err
	}

	now := u.now()
	out := &PersonaPage{Items: make([]PersonaDTO, 0, len(list)), Pagination: pg.Meta(total)}
	for i := range list {
		out.Items = append(out.Items, ToDTO(&list[i], now))
	}
	return out, nil
}

// Update changes name, phone and birth date. Document and email are fixed
// once a person exists.
func (u *Usecase) Update(ctx context.Context, id uint64, in UpdateInput) (*PersonaDTO, error) {
	now := u.now()
	if err := validateUpdate(in, now); err != nil {
		return nil, err
	}
	p, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		p.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.BirthDate != nil {
		p.BirthDate = *in.BirthDate
	}
	if err := u.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	dto := ToDTO(p, now)
	return &dto, nil
}

// Deactivate hides the person from listings. Persons are never deleted.
func (u *Usecase) Deactivate(ctx context.Context, id uint64) error {
	p, err := u.find(ctx, id)
	if err != nil {
		return err
	}
	if !p.Active {
		return nil
	}
	p.Active = false
	return u.repo.Save(ctx, p)
}
