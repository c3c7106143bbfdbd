package httpapi

import (
	"sync/atomic"
	"time"

	"jobtracker-engine/internal/config"
	"jobtracker-engine/internal/events"
	"jobtracker-engine/internal/linkmeta"
	"jobtracker-engine/internal/tracker"
)

type Deps struct {
	App *tracker.App

	Hub *events.Hub

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Idle interval for /events comment lines; 0 uses the handler default.
	SSEKeepalive time.Duration

	// Nil disables POST /link-preview.
	Preview *linkmeta.Fetcher

	// Shutdown guard; empty disables /shutdown.
	ShutdownToken string
	Shutdown      func()
}

// allowedOrigins follows config reloads.
func (d Deps) allowedOrigins() []string {
	if d.CfgVal != nil {
		if cfg, ok := d.CfgVal.Load().(config.Config); ok && len(cfg.App.AllowedOrigins) > 0 {
			return cfg.App.AllowedOrigins
		}
	}
	return config.DefaultAllowedOrigins
}
