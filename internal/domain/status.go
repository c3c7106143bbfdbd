package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the pipeline stage of an application. Only the five values
// below are valid; ParseStatus and UnmarshalJSON reject anything else.
type Status string

const (
	StatusShortListed  Status = "Short listed"
	StatusApplied      Status = "Applied"
	StatusInterviewing Status = "Interviewing"
	StatusOffer        Status = "Offer"
	StatusRejected     Status = "Rejected"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusShortListed,
	StatusApplied,
	StatusInterviewing,
	StatusOffer,
	StatusRejected,
}

func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

func (s Status) String() string { return string(s) }

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
