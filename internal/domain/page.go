package domain

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// MaxPage caps Page so Offset cannot overflow.
const MaxPage = 1_000_000

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional query values.
// Nil or non-positive values fall back to page=1, limit=20; limit is capped at
// 100 and page at MaxPage.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: defaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = min(*page, MaxPage)
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, maxPageLimit)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
}

// Describe returns the Pagination for this page given the total row count.
func (p PaginationParams) Describe(total int64) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{
		CurrentPage: p.Page,
		PageSize:    p.Limit,
		TotalItems:  total,
		TotalPages:  pages,
	}
}
