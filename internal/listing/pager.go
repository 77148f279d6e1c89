package listing

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

const unknownPages = -1

// Pager tracks the current page against the last known page count.
// The zero value is not usable; call NewPager.
type Pager struct {
	page       int
	pageSize   int
	totalPages int
}

// NewPager starts on page 1 with an unknown page count.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{page: 1, pageSize: pageSize, totalPages: unknownPages}
}

func (p *Pager) Page() int     { return p.page }
func (p *Pager) PageSize() int { return p.pageSize }

// TotalPages returns the last known page count, or -1 before the first result.
func (p *Pager) TotalPages() int { return p.totalPages }

// Known reports whether a result has set the page count.
func (p *Pager) Known() bool { return p.totalPages != unknownPages }

// Offset is the zero-based index of the first row on the current page.
func (p *Pager) Offset() int { return (p.page - 1) * p.pageSize }

// SetPage moves to n clamped to [1, totalPages]. It does nothing until the
// page count is known. Reports whether the page changed.
func (p *Pager) SetPage(n int) bool {
	if !p.Known() {
		return false
	}
	last := max(p.totalPages, 1)
	n = min(max(n, 1), last)
	if n == p.page {
		return false
	}
	p.page = n
	return true
}

func (p *Pager) Next() bool { return p.SetPage(p.page + 1) }
func (p *Pager) Prev() bool { return p.SetPage(p.page - 1) }

// SetPageSize changes the size and always returns to page 1. Non-positive
// sizes are ignored. Reports whether anything changed.
func (p *Pager) SetPageSize(n int) bool {
	if n <= 0 {
		return false
	}
	changed := n != p.pageSize || p.page != 1
	p.pageSize = n
	p.page = 1
	return changed
}

// Reset returns to page 1, keeping the size and page count.
func (p *Pager) Reset() bool {
	changed := p.page != 1
	p.page = 1
	return changed
}

// SetTotal records the total row count. When the current page no longer
// exists it is pulled back to the last page and true is returned.
func (p *Pager) SetTotal(totalCount int) bool {
	p.totalPages = TotalPages(totalCount, p.pageSize)
	if p.totalPages > 0 && p.page > p.totalPages {
		p.page = p.totalPages
		return true
	}
	return false
}

// TotalPages is ceil(totalCount / pageSize).
func TotalPages(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
