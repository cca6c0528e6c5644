package types

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a 1-based page number and size
type PageRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalize applies defaults and clamps the page size
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is a paginated list. Next and Previous are absolute URLs set by the HTTP layer.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`

	Request PageRequest `json:"-"`
}

// HasNext reports whether another page follows this one
func (p *Page[T]) HasNext() bool {
	return int64(p.Request.Page*p.Request.PageSize) < p.Count
}

func (p *Page[T]) HasPrevious() bool {
	return p.Request.Page > 1
}
