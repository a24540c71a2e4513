package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// New clamps page to >= 1 and limit to [1, MaxLimit], using DefaultLimit
// when limit is not positive.
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func (p Params) Meta(total int64) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}
