package query

import "jobtracker-engine/internal/domain"

// Summary counts records per status.
type Summary struct {
	Total    int                   `json:"total"`
	ByStatus map[domain.Status]int `json:"byStatus"`
}

func Stats(records []domain.Record) Summary {
	s := Summary{Total: len(records), ByStatus: make(map[domain.Status]int, len(domain.Statuses))}
	for _, st := range domain.Statuses {
		s.ByStatus[st] = 0
	}
	for _, r := range records {
		s.ByStatus[r.Status]++
	}
	return s
}
