package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"jobtracker-engine/internal/session"
	"jobtracker-engine/internal/tracker"
)

const stateCookie = "tracker_oauth_state"

type AuthHandler struct {
	App *tracker.App
}

type meResp struct {
	User        *session.User `json:"user"`
	SyncEnabled bool          `json:"syncEnabled"`
	Remote      string        `json:"remote,omitempty"`
}

func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, meResp{
		User:        h.App.CurrentUser(r.Context()),
		SyncEnabled: h.App.SyncEnabled(r.Context()),
		Remote:      h.App.RemoteName(),
	})
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	u, err := h.App.SignInURL(state)
	if err != nil {
		writeSignInError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, u, http.StatusFound)
}

func (h AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		WriteError(w, r, http.StatusUnauthorized, "sign_in_denied", e)
		return
	}
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		WriteError(w, r, http.StatusBadRequest, "bad_state", "sign-in state mismatch")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1})

	code := q.Get("code")
	if code == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "missing code")
		return
	}
	u, err := h.App.CompleteSignIn(r.Context(), code)
	if err != nil {
		writeSignInError(w, r, err)
		return
	}
	writeJSON(w, meResp{User: u, SyncEnabled: h.App.SyncEnabled(r.Context()), Remote: h.App.RemoteName()})
}

func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.App.SignOut(r.Context())
	writeJSON(w, map[string]any{"ok": true})
}

func writeSignInError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrSignInUnavailable) {
		WriteError(w, r, http.StatusServiceUnavailable, "sign_in_unavailable", err.Error())
		return
	}
	WriteError(w, r, http.StatusBadGateway, "sign_in_failed", err.Error())
}
