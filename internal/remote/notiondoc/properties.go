package notiondoc

import (
	"log"
	"strings"

	gnt "github.com/dstotijn/go-notion"

	"jobtracker-engine/internal/domain"
)

// Property names of the tracker database.
const (
	propRole          = "Role"
	propCompany       = "Company"
	propWorkType      = "Work Type"
	propCity          = "City"
	propStatus        = "Status"
	propAppliedDate   = "Applied Date"
	propSource        = "Source"
	propLink          = "Link"
	propNotes         = "Notes"
	propContact       = "Contact"
	propLastContacted = "Last Contacted"
	propOwner         = "Owner"
)

// helper: build a valid Notion rich_text slice from a plain string.
func richText(s string) []gnt.RichText {
	if s == "" {
		return []gnt.RichText{}
	}
	return []gnt.RichText{
		{
			Type: gnt.RichTextTypeText,
			Text: &gnt.Text{Content: s},
		},
	}
}

func plainText(rt []gnt.RichText) string {
	var b strings.Builder
	for _, t := range rt {
		switch {
		case t.PlainText != "":
			b.WriteString(t.PlainText)
		case t.Text != nil:
			b.WriteString(t.Text.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

func dateProp(d domain.Date) (gnt.DatabasePageProperty, bool) {
	t, err := d.Time()
	if err != nil {
		return gnt.DatabasePageProperty{}, false
	}
	return gnt.DatabasePageProperty{
		Date: &gnt.Date{Start: gnt.NewDateTime(t, false)},
	}, true
}

func selectProp(name string) gnt.DatabasePageProperty {
	return gnt.DatabasePageProperty{Select: &gnt.SelectOptions{Name: name}}
}

// createProperties maps a new record. LastContacted is never written on create.
func createProperties(owner string, in domain.Input) gnt.DatabasePageProperties {
	props := gnt.DatabasePageProperties{
		propRole:     {Title: richText(in.Role)},
		propCompany:  {RichText: richText(in.Company)},
		propWorkType: selectProp(in.WorkType),
		propCity:     {RichText: richText(in.City)},
		propStatus:   selectProp(string(in.Status)),
		propSource:   {RichText: richText(in.Source)},
		propNotes:    {RichText: richText(in.Notes)},
		propContact:  {RichText: richText(in.Contact)},
		propOwner:    {RichText: richText(owner)},
	}
	if in.Link != "" {
		link := in.Link
		props[propLink] = gnt.DatabasePageProperty{URL: &link}
	}
	if p, ok := dateProp(in.AppliedDate); ok {
		props[propAppliedDate] = p
	}
	return props
}

// patchProperties maps only the non-nil patch fields. LastContacted is kept
// locally and never written back.
func patchProperties(p domain.Patch) gnt.DatabasePageProperties {
	props := gnt.DatabasePageProperties{}
	if p.Role != nil {
		props[propRole] = gnt.DatabasePageProperty{Title: richText(*p.Role)}
	}
	if p.Company != nil {
		props[propCompany] = gnt.DatabasePageProperty{RichText: richText(*p.Company)}
	}
	if p.WorkType != nil {
		props[propWorkType] = selectProp(*p.WorkType)
	}
	if p.City != nil {
		props[propCity] = gnt.DatabasePageProperty{RichText: richText(*p.City)}
	}
	if p.Status != nil {
		props[propStatus] = selectProp(string(*p.Status))
	}
	if p.AppliedDate != nil {
		if dp, ok := dateProp(*p.AppliedDate); ok {
			props[propAppliedDate] = dp
		}
	}
	if p.Source != nil {
		props[propSource] = gnt.DatabasePageProperty{RichText: richText(*p.Source)}
	}
	if p.Link != nil {
		link := *p.Link
		props[propLink] = gnt.DatabasePageProperty{URL: &link}
	}
	if p.Notes != nil {
		props[propNotes] = gnt.DatabasePageProperty{RichText: richText(*p.Notes)}
	}
	if p.Contact != nil {
		props[propContact] = gnt.DatabasePageProperty{RichText: richText(*p.Contact)}
	}
	return props
}

func pageProperties(page gnt.Page) gnt.DatabasePageProperties {
	props, _ := page.Properties.(gnt.DatabasePageProperties)
	return props
}

func ownerOf(page gnt.Page) string {
	return plainText(pageProperties(page)[propOwner].RichText)
}

func recordFromPage(page gnt.Page) domain.Record {
	props := pageProperties(page)
	text := func(name string) string {
		return plainText(props[name].RichText)
	}
	sel := func(name string) string {
		if s := props[name].Select; s != nil {
			return s.Name
		}
		return ""
	}
	date := func(name string) domain.Date {
		if d := props[name].Date; d != nil {
			return domain.DateOf(d.Start.Time)
		}
		return ""
	}

	r := domain.Record{
		ID:            page.ID,
		Role:          plainText(props[propRole].Title),
		Company:       text(propCompany),
		WorkType:      sel(propWorkType),
		City:          text(propCity),
		AppliedDate:   date(propAppliedDate),
		Source:        text(propSource),
		Notes:         text(propNotes),
		Contact:       text(propContact),
		LastContacted: date(propLastContacted),
	}
	if u := props[propLink].URL; u != nil {
		r.Link = *u
	}

	st, err := domain.ParseStatus(sel(propStatus))
	if err != nil {
		log.Printf("[notion] page=%s %v, using %q", page.ID, err, domain.StatusShortListed)
		st = domain.StatusShortListed
	}
	r.Status = st
	return r
}
