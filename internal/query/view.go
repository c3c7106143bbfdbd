package query

import "jobtracker-engine/internal/domain"

// View is the navigation state of the list screen: the active criteria and
// the current page. Changing any criterion sends the user back to page 1,
// otherwise they could sit on a page past the new end of the result.
type View struct {
	criteria Criteria
	page     int
	pageSize int
}

func NewView(pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{criteria: Criteria{}.Normalize(), page: 1, pageSize: pageSize}
}

func (v *View) Criteria() Criteria { return v.criteria }

func (v *View) Page() int { return v.page }

func (v *View) PageSize() int { return v.pageSize }

// SetCriteria replaces the filters and resets to page 1 if anything changed.
func (v *View) SetCriteria(c Criteria) {
	c = c.Normalize()
	if c != v.criteria {
		v.criteria = c
		v.page = 1
	}
}

// Reset clears every filter.
func (v *View) Reset() {
	v.SetCriteria(Criteria{})
}

// Next advances one page, never past the last page of records.
func (v *View) Next(records []domain.Record) {
	total := TotalPages(len(Filter(records, v.criteria)), v.pageSize)
	if v.page < total {
		v.page++
	}
}

// Prev goes back one page, never before page 1.
func (v *View) Prev() {
	if v.page > 1 {
		v.page--
	}
}

// GoTo jumps to page n, clamped to [1, totalPages].
func (v *View) GoTo(records []domain.Record, n int) {
	total := TotalPages(len(Filter(records, v.criteria)), v.pageSize)
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}
	v.page = n
}

// Render runs the pipeline for the current state.
func (v *View) Render(records []domain.Record) Page {
	return Paginate(Filter(records, v.criteria), v.page, v.pageSize)
}
