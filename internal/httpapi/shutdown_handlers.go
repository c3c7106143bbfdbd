package httpapi

import (
	"crypto/subtle"
	"net"
	"net/http"
)

type ShutdownHandler struct {
	Token    string
	Shutdown func()
}

// Shutdown only answers loopback callers that present the startup token.
func (h ShutdownHandler) Handle(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "127.0.0.1" && host != "::1" && host != "localhost" {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}

	got := r.Header.Get("X-Shutdown-Token")
	if h.Token == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	// respond first, then stop asynchronously
	writeJSON(w, map[string]any{"ok": true, "message": "shutting down"})
	if h.Shutdown != nil {
		go h.Shutdown()
	}
}
