// Package pagination implements simple page-number pagination for listings.
package pagination

// PageRequest is a one-based page number plus page size.
type PageRequest struct {
	Number int
	Size   int
}

// Offset converts the request into a SQL offset.
func (r PageRequest) Offset() int {
	if r.Number < 1 {
		return 0
	}
	return (r.Number - 1) * r.Size
}

// Page is one page of items plus enough metadata to render pager links.
type Page[T any] struct {
	Items           []T
	Number          int
	Size            int
	TotalItems      int64
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// NextNumber is the following page number; only meaningful when HasNextPage.
func (p Page[T]) NextNumber() int { return p.Number + 1 }

// PreviousNumber is the preceding page number; only meaningful when
// HasPreviousPage.
func (p Page[T]) PreviousNumber() int { return p.Number - 1 }

// New assembles a Page from one fetched slice and the scoped row count.
// Page numbers past the end produce an empty page, not an error.
func New[T any](items []T, req PageRequest, total int64) Page[T] {
	number := req.Number
	if number < 1 {
		number = 1
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page[T]{
		Items:           items,
		Number:          number,
		Size:            req.Size,
		TotalItems:      total,
		TotalPages:      totalPages,
		HasNextPage:     number < totalPages,
		HasPreviousPage: number > 1 && totalPages > 0,
	}
}
