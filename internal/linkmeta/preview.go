// Package linkmeta reads a job posting page and suggests form values for a
// new application (role, company, city, work type).
package linkmeta

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

type Preview struct {
	URL      string `json:"url"`
	Role     string `json:"role,omitempty"`
	Company  string `json:"company,omitempty"`
	City     string `json:"city,omitempty"`
	WorkType string `json:"workType,omitempty"`
	Source   string `json:"source,omitempty"`
}

var ErrBadURL = errors.New("link must be an absolute http(s) URL")

// Fetcher rate-limits per host so repeated previews don't hammer a job board.
type Fetcher struct {
	hc *http.Client

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	r     rate.Limit
	burst int
}

func NewFetcher(hc *http.Client, reqPerSec float64, burst int) *Fetcher {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	if burst <= 0 {
		burst = 1
	}
	r := rate.Inf
	if reqPerSec > 0 {
		r = rate.Limit(reqPerSec)
	}
	return &Fetcher{hc: hc, hosts: map[string]*rate.Limiter{}, r: r, burst: burst}
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lim, ok := f.hosts[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(f.r, f.burst)
	f.hosts[host] = lim
	return lim
}

func (f *Fetcher) Preview(ctx context.Context, raw string) (Preview, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Preview{}, ErrBadURL
	}
	if err := f.limiterFor(strings.ToLower(u.Host)).Wait(ctx); err != nil {
		return Preview{}, err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	req.Header.Set("User-Agent", "JobTracker/1.0 (+local)")
	res, err := f.hc.Do(req)
	if err != nil {
		return Preview{}, fmt.Errorf("fetch posting: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return Preview{}, fmt.Errorf("posting page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return Preview{}, fmt.Errorf("parse posting: %w", err)
	}
	p := Extract(doc)
	p.URL = CanonicalURL(u.String())
	p.Source = sourceFor(u.Host)
	return p, nil
}

func meta(doc *goquery.Document, attr, name string) string {
	v, _ := doc.Find(fmt.Sprintf(`meta[%s=%q]`, attr, name)).First().Attr("content")
	return cleanText(v)
}

// Extract pulls suggestions out of a parsed posting page.
func Extract(doc *goquery.Document) Preview {
	var p Preview

	title := meta(doc, "property", "og:title")
	if title == "" {
		title = cleanText(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = cleanText(doc.Find("title").First().Text())
	}
	p.Role, p.Company = splitTitle(title)

	if site := meta(doc, "property", "og:site_name"); site != "" {
		p.Company = site
	}
	if p.Company == "" {
		p.Company = cleanText(doc.Find(`[data-testid='company-name'], .company-name, .company`).First().Text())
	}

	for _, sel := range []string{
		".location",
		".job__location",
		".posting-categories .location",
		"[data-testid='job-location']",
		"[data-testid='location']",
	} {
		if t := cleanText(doc.Find(sel).First().Text()); t != "" {
			p.City = cityFrom(t)
			break
		}
	}
	desc := meta(doc, "property", "og:description")
	if desc == "" {
		desc = meta(doc, "name", "description")
	}
	if p.City == "" {
		p.City = cityFrom(labeledValue(desc, "location:", "locations:", "job location:"))
	}
	if p.City == "" {
		p.City = cityFrom(labeledValue(doc.Find("body").Text(), "location:", "locations:", "job location:"))
	}

	p.WorkType = inferWorkType(p.City, title, desc)
	return p
}

func sourceFor(host string) string {
	h := strings.TrimPrefix(strings.ToLower(host), "www.")
	known := map[string]string{
		"linkedin.com":             "LinkedIn",
		"indeed.com":               "Indeed",
		"boards.greenhouse.io":     "Greenhouse",
		"job-boards.greenhouse.io": "Greenhouse",
		"jobs.lever.co":            "Lever",
		"wellfound.com":            "Wellfound",
		"myworkdayjobs.com":        "Workday",
	}
	for suffix, name := range known {
		if h == suffix || strings.HasSuffix(h, "."+suffix) {
			return name
		}
	}
	return "Company site"
}
