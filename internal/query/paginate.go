package query

import "jobtracker-engine/internal/domain"

const DefaultPageSize = 20

// Page is one window of an ordered result.
type Page struct {
	Items      []domain.Record `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

// TotalPages is ceil(n/size), and 0 for an empty result.
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate slices [(page-1)*size, page*size). The page number is not
// clamped: out-of-range pages yield no items, and keeping navigation in
// range is the caller's job.
func Paginate(records []domain.Record, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	p := Page{
		Items:      []domain.Record{},
		Page:       page,
		PageSize:   size,
		Total:      len(records),
		TotalPages: TotalPages(len(records), size),
	}
	if page < 1 {
		return p
	}

	start := (page - 1) * size
	if start >= len(records) {
		return p
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	p.Items = records[start:end]
	return p
}
