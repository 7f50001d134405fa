package domain

// Page sizes for the paginated meeting and trip lists.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams selects one page of a meeting or trip listing. Both the
// Postgres and the in-memory repos slice their ordered results with it.
type PaginationParams struct {
	Page  int // 1-based
	Limit int
}

// NewPaginationParams resolves the optional ?page= and ?limit= values.
// Missing or non-positive values use page 1 and DefaultPageSize; larger
// limits are clamped to MaxPageSize.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageSize}
	if page != nil && *page > 0 {
		p.Page = *page
	}
	if limit != nil && *limit > 0 {
		p.Limit = min(*limit, MaxPageSize)
	}
	return p
}

// Offset is the number of records that precede the page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
