package persona

import "context"

type ListFilter struct {
	// Search matches document, name or email (case-insensitive substring).
	Search string
	Offset int
	Limit  int
}

// Repository lookups return gorm.ErrRecordNotFound when nothing matches.
type Repository interface {
	Create(ctx context.Context, p *Persona) error
	Save(ctx context.Context, p *Persona) error
	GetByID(ctx context.Context, id uint64) (*Persona, error)
	GetByDocument(ctx context.Context, document string) (*Persona, error)
	GetByEmail(ctx context.Context, email string) (*Persona, error)
	// List returns active persons ordered by name, plus the total match count.
	List(ctx context.Context, f ListFilter) ([]Persona, int64, error)
	CountActive(ctx context.Context) (int64, error)
}
