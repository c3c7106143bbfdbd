package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"jobtracker-engine/internal/domain"
	"jobtracker-engine/internal/query"
	"jobtracker-engine/internal/tracker"
)

type ApplicationsHandler struct {
	App *tracker.App
}

func intParam(r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// List is stateless: it does not move the stored view.
func (h ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, ok := intParam(r, "page", 1)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "page must be an integer")
		return
	}
	size, ok := intParam(r, "page_size", query.DefaultPageSize)
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "page_size must be an integer")
		return
	}
	c := query.Criteria{
		Search:   q.Get("q"),
		Status:   q.Get("status"),
		WorkType: q.Get("work_type"),
	}
	writeJSON(w, h.App.Query(c, page, size))
}

func (h ApplicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	rec, err := h.App.Create(r.Context(), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, rec)
}

func (h ApplicationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.App.Get(r.PathValue("id"))
	if !ok {
		writeAppError(w, r, tracker.ErrNotFound)
		return
	}
	writeJSON(w, rec)
}

func (h ApplicationsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var in domain.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	rec, err := h.App.Edit(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, rec)
}

type statusReq struct {
	Status domain.Status `json:"status"`
}

func (h ApplicationsHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		writeAppError(w, r, &domain.ValidationError{Fields: []string{"status"}})
		return
	}
	rec, err := h.App.ChangeStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, rec)
}

func (h ApplicationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.App.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "id": id})
}

func (h ApplicationsHandler) Reload(w http.ResponseWriter, r *http.Request) {
	n, err := h.App.Reload(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "count": n})
}

func (h ApplicationsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.App.Stats())
}

func (h ApplicationsHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"workTypes": domain.WorkTypes,
		"statuses":  domain.Statuses,
	})
}
