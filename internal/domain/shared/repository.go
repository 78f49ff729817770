package shared

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Filter is the paging and free-text part of every list query.
type Filter struct {
	Page     int
	PageSize int
	Search   string
}

func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: defaultPageSize}
}

// Normalize clamps Page to at least 1 and PageSize into [1, 100].
func (f Filter) Normalize() Filter {
	f.Page = max(f.Page, 1)
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	f.PageSize = min(f.PageSize, maxPageSize)
	return f
}

func (f Filter) Offset() int { return (f.Page - 1) * f.PageSize }

// Paginated is one page of a list plus enough to render a pager.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	p := Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return p
}
