package httpapi

import (
	"net/http"
	"time"

	"jobtracker-engine/internal/tracker"
)

type HealthHandler struct {
	App *tracker.App
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	mode := "local"
	if h.App.SyncEnabled(r.Context()) {
		mode = "sync"
	}
	writeJSON(w, map[string]any{
		"ok":      true,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"mode":    mode,
		"remote":  h.App.RemoteName(),
		"records": len(h.App.Records()),
	})
}
