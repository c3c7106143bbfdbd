package linkmeta

import (
	"net/url"
	"sort"
	"strings"

	"jobtracker-engine/internal/domain"
)

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// CanonicalURL drops fragments and tracking parameters so the same posting
// shared from different places stores the same link.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "gclid" || lk == "fbclid" || lk == "msclkid" || lk == "trk" || lk == "refid" {
			q.Del(k)
		}
	}
	if strings.Contains(u.Host, "linkedin.com") {
		keep := url.Values{}
		if v := q.Get("currentJobId"); v != "" {
			keep.Set("currentJobId", v)
		}
		q = keep
	}
	for k := range q {
		sort.Strings(q[k])
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// cityFrom dedupes comma-separated parts, "Austin, TX, Austin" -> "Austin, TX".
func cityFrom(loc string) string {
	loc = cleanText(loc)
	for _, prefix := range []string{"Location:", "Locations:", "LOCATION:", "LOCATIONS:"} {
		loc = strings.TrimPrefix(loc, prefix)
	}
	seen := map[string]bool{}
	var out []string
	for _, p := range strings.Split(loc, ",") {
		p = cleanText(p)
		if p == "" || seen[strings.ToLower(p)] {
			continue
		}
		seen[strings.ToLower(p)] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// inferWorkType maps free text to one of the well-known work types, or "".
func inferWorkType(parts ...string) string {
	blob := strings.ToLower(strings.Join(parts, " "))
	switch {
	case strings.Contains(blob, "hybrid"):
		return domain.WorkTypeHybrid
	case strings.Contains(blob, "remote"):
		return domain.WorkTypeRemote
	case strings.Contains(blob, "on-site") || strings.Contains(blob, "onsite") || strings.Contains(blob, "on site"):
		return domain.WorkTypeOnSite
	}
	return ""
}

// labeledValue returns the text after "Location:" style labels.
func labeledValue(s string, labels ...string) string {
	low := strings.ToLower(s)
	for _, lab := range labels {
		i := strings.Index(low, lab)
		if i < 0 {
			continue
		}
		rest := strings.TrimSpace(s[i+len(lab):])
		for _, cut := range []string{"\n", "\r", " | ", " · "} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}
		rest = cleanText(rest)
		if rest != "" && len(rest) <= 80 {
			return rest
		}
	}
	return ""
}

// splitTitle handles "Role at Company" and "Role - Company" page titles.
func splitTitle(t string) (role, company string) {
	t = cleanText(t)
	for _, sep := range []string{" at ", " - ", " | ", " – "} {
		if i := strings.Index(t, sep); i > 0 {
			return cleanText(t[:i]), cleanText(t[i+len(sep):])
		}
	}
	return t, ""
}
