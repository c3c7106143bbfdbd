package httpapi

import "net/http"

func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{App: d.App}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Applications
	ah := ApplicationsHandler{App: d.App}
	mux.HandleFunc("/applications", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  ah.List,
		http.MethodPost: ah.Create,
	}))
	mux.HandleFunc("/applications/reload", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Reload,
	}))
	mux.HandleFunc("/applications/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    ah.Get,
		http.MethodPut:    ah.Edit,
		http.MethodDelete: ah.Delete,
	}))
	mux.HandleFunc("/applications/{id}/status", methodMux(map[string]http.HandlerFunc{
		http.MethodPatch: ah.ChangeStatus,
	}))
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Stats,
	}))
	mux.HandleFunc("/work-types", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Options,
	}))

	// List view
	vh := ViewHandler{App: d.App}
	mux.HandleFunc("/view", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: vh.Get,
	}))
	mux.HandleFunc("/view/criteria", methodMux(map[string]http.HandlerFunc{
		http.MethodPut: vh.PutCriteria,
	}))
	mux.HandleFunc("/view/next", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: vh.Next,
	}))
	mux.HandleFunc("/view/prev", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: vh.Prev,
	}))
	mux.HandleFunc("/view/page", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: vh.GoTo,
	}))

	ph := PreviewHandler{Fetcher: d.Preview}
	mux.HandleFunc("/link-preview", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Preview,
	}))

	// Auth
	auh := AuthHandler{App: d.App}
	mux.HandleFunc("/auth/me", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: auh.Me,
	}))
	mux.HandleFunc("/auth/login", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: auh.Login,
	}))
	mux.HandleFunc("/auth/callback", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: auh.Callback,
	}))
	mux.HandleFunc("/auth/logout", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: auh.Logout,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/secrets/notion", methodMux(map[string]http.HandlerFunc{
		http.MethodPut:    sh.SetNotionToken,
		http.MethodDelete: sh.DeleteNotionToken,
	}))
	mux.HandleFunc("/secrets/google", methodMux(map[string]http.HandlerFunc{
		http.MethodPut: sh.SetGoogleSecret,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub, Keepalive: d.SSEKeepalive}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	if d.ShutdownToken != "" {
		sdh := ShutdownHandler{Token: d.ShutdownToken, Shutdown: d.Shutdown}
		mux.HandleFunc("/shutdown", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: sdh.Handle,
		}))
	}

	return mux
}

// NewHandler wraps the mux in the middleware chain.
func NewHandler(d Deps) http.Handler {
	return Chain(NewMux(d), RequestID, Recover, AccessLog, Cors(d.allowedOrigins))
}
