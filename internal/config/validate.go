package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// DefaultAllowedOrigins are the desktop shell and loopback pages.
var DefaultAllowedOrigins = []string{
	"tauri://localhost",
	"http://tauri.localhost",
	"http://localhost",
	"http://127.0.0.1",
	"http://[::1]",
}

const (
	defaultPageSize   = 20
	notionDefaultRate = 3
)

// NormalizeAndValidate returns a copy with defaults filled in, plus any
// errors (fatal) and warnings (worth showing).
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	// ---- app ----
	out.App.Host = strings.TrimSpace(out.App.Host)
	if out.App.Host == "" {
		out.App.Host = "127.0.0.1"
	}
	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.Host != "127.0.0.1" && out.App.Host != "localhost" && out.App.Host != "::1" {
		res.addWarn("app.host is %q; the API has no authentication of its own.", out.App.Host)
	}
	if out.App.PageSize <= 0 {
		out.App.PageSize = defaultPageSize
	} else if out.App.PageSize > 200 {
		res.addWarn("app.page_size is very high (%d).", out.App.PageSize)
	}

	origins := make([]string, 0, len(out.App.AllowedOrigins))
	for _, o := range out.App.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("app.allowed_origins: %q is not a scheme://host origin", o)
			continue
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		origins = append(origins, DefaultAllowedOrigins...)
	}
	out.App.AllowedOrigins = origins

	// ---- remote ----
	out.Remote.Backend = strings.ToLower(strings.TrimSpace(out.Remote.Backend))
	if out.Remote.Backend == "" {
		out.Remote.Backend = BackendNone
	}
	if out.Remote.RequestsPerSecond < 0 {
		res.addErr("remote.requests_per_second must be >= 0")
	}
	if out.Remote.Burst <= 0 {
		out.Remote.Burst = 1
	}
	if out.Remote.PingIntervalSeconds < 0 {
		res.addErr("remote.ping_interval_seconds must be >= 0")
	} else if out.Remote.PingIntervalSeconds > 0 && out.Remote.PingIntervalSeconds < 30 {
		res.addWarn("remote.ping_interval_seconds below 30 spends most of the request budget on pings.")
	}

	switch out.Remote.Backend {
	case BackendNone:
	case BackendSQLite:
		out.Remote.SQLite.Path = strings.TrimSpace(out.Remote.SQLite.Path)
		if out.Remote.SQLite.Path == "" {
			out.Remote.SQLite.Path = filepath.Join(out.App.DataDir, "remote.db")
		}
	case BackendNotion:
		out.Remote.Notion.DatabaseID = strings.TrimSpace(out.Remote.Notion.DatabaseID)
		if out.Remote.Notion.DatabaseID == "" {
			res.addWarn("remote.notion.database_id is empty; notion sync stays inactive.")
		}
		if strings.TrimSpace(out.Remote.Notion.Token) == "" {
			res.addWarn("Notion token not set; set NOTION_TOKEN or store it in the keychain.")
		}
		if out.Remote.RequestsPerSecond == 0 {
			out.Remote.RequestsPerSecond = notionDefaultRate
		} else if out.Remote.RequestsPerSecond > notionDefaultRate {
			res.addWarn("remote.requests_per_second is %.1f; Notion allows about %d.", out.Remote.RequestsPerSecond, notionDefaultRate)
		}
	default:
		res.addErr("remote.backend must be one of none, sqlite, notion (got %q)", out.Remote.Backend)
	}

	// ---- auth ----
	g := &out.Auth.Google
	g.ClientID = strings.TrimSpace(g.ClientID)
	g.RedirectURL = strings.TrimSpace(g.RedirectURL)
	if g.ClientID == "" {
		if out.Remote.Backend != BackendNone {
			res.addWarn("auth.google.client_id is empty; nobody can sign in, so %s sync stays inactive.", out.Remote.Backend)
		}
	} else {
		if strings.TrimSpace(g.ClientSecret) == "" {
			res.addWarn("Google client secret not set; set GOOGLE_CLIENT_SECRET.")
		}
		if g.RedirectURL == "" && out.App.Port > 0 {
			g.RedirectURL = fmt.Sprintf("http://%s:%d/auth/callback", out.App.Host, out.App.Port)
		}
	}
	if g.RedirectURL != "" {
		if u, err := url.Parse(g.RedirectURL); err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("auth.google.redirect_url must be an absolute URL")
		}
	}

	// ---- link preview ----
	if out.LinkPreview.RequestsPerSecond < 0 {
		res.addErr("link_preview.requests_per_second must be >= 0")
	}
	if out.LinkPreview.TimeoutSeconds <= 0 {
		out.LinkPreview.TimeoutSeconds = 15
	}

	return out, res
}
