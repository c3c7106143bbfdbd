package domain

import (
	"fmt"
	"strings"
)

// Well-known work types offered as filter options. WorkType itself is free text.
const (
	WorkTypeRemote = "Remote"
	WorkTypeHybrid = "Hybrid"
	WorkTypeOnSite = "On-site"
)

var WorkTypes = []string{WorkTypeRemote, WorkTypeHybrid, WorkTypeOnSite}

// Record is one tracked job application.
type Record struct {
	ID            string `json:"id"`
	Company       string `json:"company"`
	Role          string `json:"role"`
	WorkType      string `json:"workType"`
	City          string `json:"city"`
	Status        Status `json:"status"`
	AppliedDate   Date   `json:"appliedDate"`
	Source        string `json:"source,omitempty"`
	Link          string `json:"link,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Contact       string `json:"contact,omitempty"`
	LastContacted Date   `json:"lastContacted,omitempty"`
}

// Input is a record without its id: the payload for create and edit.
type Input struct {
	Company       string `json:"company"`
	Role          string `json:"role"`
	WorkType      string `json:"workType"`
	City          string `json:"city"`
	Status        Status `json:"status"`
	AppliedDate   Date   `json:"appliedDate"`
	Source        string `json:"source,omitempty"`
	Link          string `json:"link,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Contact       string `json:"contact,omitempty"`
	LastContacted Date   `json:"lastContacted,omitempty"`
}

// ValidationError lists the required fields that were empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Normalize trims every string field and defaults the status.
func (in Input) Normalize() Input {
	in.Company = strings.TrimSpace(in.Company)
	in.Role = strings.TrimSpace(in.Role)
	in.WorkType = strings.TrimSpace(in.WorkType)
	in.City = strings.TrimSpace(in.City)
	in.Source = strings.TrimSpace(in.Source)
	in.Link = strings.TrimSpace(in.Link)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Contact = strings.TrimSpace(in.Contact)
	if in.Status == "" {
		in.Status = StatusShortListed
	}
	return in
}

// Validate expects a normalized input.
func (in Input) Validate() error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"company", in.Company},
		{"role", in.Role},
		{"workType", in.WorkType},
		{"city", in.City},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	if !in.Status.Valid() {
		return fmt.Errorf("invalid status %q", in.Status)
	}
	return nil
}

// WithID builds a record from the input.
func (in Input) WithID(id string) Record {
	return Record{
		ID:            id,
		Company:       in.Company,
		Role:          in.Role,
		WorkType:      in.WorkType,
		City:          in.City,
		Status:        in.Status,
		AppliedDate:   in.AppliedDate,
		Source:        in.Source,
		Link:          in.Link,
		Notes:         in.Notes,
		Contact:       in.Contact,
		LastContacted: in.LastContacted,
	}
}

// Input strips the id.
func (r Record) Input() Input {
	return Input{
		Company:       r.Company,
		Role:          r.Role,
		WorkType:      r.WorkType,
		City:          r.City,
		Status:        r.Status,
		AppliedDate:   r.AppliedDate,
		Source:        r.Source,
		Link:          r.Link,
		Notes:         r.Notes,
		Contact:       r.Contact,
		LastContacted: r.LastContacted,
	}
}

// Patch is a partial update. Nil fields are left untouched and are never
// sent to a remote store.
type Patch struct {
	Company       *string `json:"company,omitempty"`
	Role          *string `json:"role,omitempty"`
	WorkType      *string `json:"workType,omitempty"`
	City          *string `json:"city,omitempty"`
	Status        *Status `json:"status,omitempty"`
	AppliedDate   *Date   `json:"appliedDate,omitempty"`
	Source        *string `json:"source,omitempty"`
	Link          *string `json:"link,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Contact       *string `json:"contact,omitempty"`
	LastContacted *Date   `json:"lastContacted,omitempty"`
}

// PatchFrom turns a full input into a patch, omitting unset (empty) values.
func PatchFrom(in Input) Patch {
	var p Patch
	str := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	p.Company = str(in.Company)
	p.Role = str(in.Role)
	p.WorkType = str(in.WorkType)
	p.City = str(in.City)
	if in.Status != "" {
		st := in.Status
		p.Status = &st
	}
	if !in.AppliedDate.IsZero() {
		d := in.AppliedDate
		p.AppliedDate = &d
	}
	p.Source = str(in.Source)
	p.Link = str(in.Link)
	p.Notes = str(in.Notes)
	p.Contact = str(in.Contact)
	if !in.LastContacted.IsZero() {
		d := in.LastContacted
		p.LastContacted = &d
	}
	return p
}

// Apply returns r with every non-nil patch field applied.
func (p Patch) Apply(r Record) Record {
	if p.Company != nil {
		r.Company = *p.Company
	}
	if p.Role != nil {
		r.Role = *p.Role
	}
	if p.WorkType != nil {
		r.WorkType = *p.WorkType
	}
	if p.City != nil {
		r.City = *p.City
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.AppliedDate != nil {
		r.AppliedDate = *p.AppliedDate
	}
	if p.Source != nil {
		r.Source = *p.Source
	}
	if p.Link != nil {
		r.Link = *p.Link
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.Contact != nil {
		r.Contact = *p.Contact
	}
	if p.LastContacted != nil {
		r.LastContacted = *p.LastContacted
	}
	return r
}
