package persona

import (
	"time"

	"creditos-backend/internal/domain/persona"
	"creditos-backend/pkg/pagination"
)

// DateLayout is the wire format of birth dates.
const DateLayout = "2006-01-02"

type ListInput struct {
	Page   int
	Limit  int
	Search string
}

// UpdateInput carries the mutable fields; nil means unchanged.
type UpdateInput struct {
	Name      *string
	Phone     *string
	BirthDate *time.Time
}

type PersonaDTO struct {
	ID             uint64    `json:"id"`
	Document       string    `json:"document"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	BirthDate      string    `json:"birth_date"`
	Age            int       `json:"age"`
	EmailValidated bool      `json:"email_validated"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

type PersonaPage struct {
	Items      []PersonaDTO    `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

func ToDTO(p *persona.Persona, now time.Time) PersonaDTO {
	return PersonaDTO{
		ID:             p.ID,
		Document:       p.Document,
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		BirthDate:      p.BirthDate.Format(DateLayout),
		Age:            p.Age(now),
		EmailValidated: p.EmailValidated,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
	}
}
