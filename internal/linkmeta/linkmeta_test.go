package linkmeta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker-engine/internal/domain"
)

const ogPage = `<html><head><title>ignored</title>
<meta property="og:title" content="Senior Go Engineer at Globex">
<meta property="og:description" content="Join us. Location: Berlin, Germany, Berlin | Hybrid team">
</head><body><h1>Something else</h1></body></html>`

const plainPage = `<html><head><title>Backend Developer - Initech</title>
<meta property="og:site_name" content="Initech Careers">
</head><body><div class="location">Remote (US)</div></body></html>`

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractOpenGraph(t *testing.T) {
	p := Extract(parse(t, ogPage))
	assert.Equal(t, "Senior Go Engineer", p.Role)
	assert.Equal(t, "Globex", p.Company)
	assert.Equal(t, "Berlin, Germany", p.City)
	assert.Equal(t, domain.WorkTypeHybrid, p.WorkType)
}

func TestExtractTitleAndLocationElement(t *testing.T) {
	p := Extract(parse(t, plainPage))
	assert.Equal(t, "Backend Developer", p.Role)
	assert.Equal(t, "Initech Careers", p.Company)
	assert.Equal(t, "Remote (US)", p.City)
	assert.Equal(t, domain.WorkTypeRemote, p.WorkType)
}

func TestExtractEmptyPage(t *testing.T) {
	p := Extract(parse(t, `<html><body></body></html>`))
	assert.Equal(t, Preview{}, p)
}

func TestPreviewFetchesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/jobs/42":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(ogPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 0, 1)
	p, err := f.Preview(context.Background(), srv.URL+"/jobs/42?utm_source=feed#apply")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/jobs/42", p.URL)
	assert.Equal(t, "Globex", p.Company)
	assert.Equal(t, "Company site", p.Source)

	_, err = f.Preview(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestPreviewRejectsBadURL(t *testing.T) {
	f := NewFetcher(nil, 1, 1)
	for _, raw := range []string{"", "not a url", "ftp://example.com/x", "/relative"} {
		_, err := f.Preview(context.Background(), raw)
		assert.ErrorIs(t, err, ErrBadURL, raw)
	}
}

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t,
		"https://example.com/jobs/1?ref=a",
		CanonicalURL("HTTPS://Example.com/jobs/1?utm_campaign=x&ref=a&gclid=1#top"))
	assert.Equal(t,
		"https://www.linkedin.com/jobs/view?currentJobId=99",
		CanonicalURL("https://www.linkedin.com/jobs/view?currentJobId=99&trackingId=abc"))
	assert.Equal(t, "", CanonicalURL("  "))
}

func TestSourceFor(t *testing.T) {
	assert.Equal(t, "LinkedIn", sourceFor("www.linkedin.com"))
	assert.Equal(t, "Greenhouse", sourceFor("boards.greenhouse.io"))
	assert.Equal(t, "Workday", sourceFor("acme.wd5.myworkdayjobs.com"))
	assert.Equal(t, "Company site", sourceFor("careers.acme.com"))
}
