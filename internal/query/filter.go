// Package query turns the tracked records into what the user sees:
// filtered, ordered by pipeline stage, and split into pages.
package query

import (
	"sort"
	"strings"

	"jobtracker-engine/internal/domain"
)

// Sentinels meaning "no filter". They differ in casing on purpose: the
// status one is shown as a tab label, the work-type one is a select value.
const (
	AllStatuses  = "All"
	AllWorkTypes = "all"
)

const unknownPriority = 999

var statusPriority = map[domain.Status]int{
	domain.StatusShortListed:  1,
	domain.StatusInterviewing: 2,
	domain.StatusOffer:        3,
	domain.StatusApplied:      4,
	domain.StatusRejected:     5,
}

// Criteria are the user-controlled filter inputs.
type Criteria struct {
	Search   string `json:"search"`
	Status   string `json:"status"`
	WorkType string `json:"workType"`
}

// Normalize maps empty filters to their "everything" sentinels.
func (c Criteria) Normalize() Criteria {
	if strings.TrimSpace(c.Status) == "" {
		c.Status = AllStatuses
	}
	if strings.TrimSpace(c.WorkType) == "" {
		c.WorkType = AllWorkTypes
	}
	return c
}

// Priority is the sort rank of a status; unknown statuses sort last.
func Priority(s domain.Status) int {
	if p, ok := statusPriority[s]; ok {
		return p
	}
	return unknownPriority
}

// Filter returns the records matching all of c's predicates, stably ordered
// by status priority. The input slice is never modified.
func Filter(records []domain.Record, c Criteria) []domain.Record {
	c = c.Normalize()
	needle := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if !matchesText(r, needle) {
			continue
		}
		if c.Status != AllStatuses && string(r.Status) != c.Status {
			continue
		}
		if c.WorkType != AllWorkTypes && r.WorkType != c.WorkType {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return Priority(out[i].Status) < Priority(out[j].Status)
	})
	return out
}

func matchesText(r domain.Record, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{r.Company, r.Role, r.WorkType, r.Notes} {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
