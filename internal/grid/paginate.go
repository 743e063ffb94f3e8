package grid

import "math"

// DefaultPageSize applies when a page size is missing or invalid.
const DefaultPageSize = 10

// Page is the grid's pagination state: a 0-based page index and page size.
type Page struct {
	Index int
	Size  int
}

// Clamp forces the page into the valid range for total rows, so a shrinking
// filtered set can never leave the grid on an out-of-range empty page.
func (p Page) Clamp(total int) Page {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	last := int(math.Ceil(float64(total)/float64(p.Size))) - 1
	if last < 0 {
		last = 0
	}
	if p.Index > last {
		p.Index = last
	}
	if p.Index < 0 {
		p.Index = 0
	}
	return p
}

// Meta describes the resolved pagination of one render pass.
type Meta struct {
	PageIndex  int `json:"page_index"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta computes pagination metadata for a clamped page.
func NewMeta(p Page, total int) Meta {
	totalPages := int(math.Ceil(float64(total) / float64(p.Size)))
	return Meta{PageIndex: p.Index, PageSize: p.Size, Total: total, TotalPages: totalPages}
}

// Slice returns the rows belonging to the page. The page is expected to be
// clamped; out-of-range indexes yield an empty slice rather than a panic.
func Slice[T any](rows []T, p Page) []T {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	start := p.Index * p.Size
	if start >= len(rows) || start < 0 {
		return nil
	}
	end := start + p.Size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
