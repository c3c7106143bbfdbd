package httpapi

import (
	"net/http"

	"jobtracker-engine/internal/query"
	"jobtracker-engine/internal/tracker"
)

// ViewHandler exposes the server-held list view: criteria plus current page.
type ViewHandler struct {
	App *tracker.App
}

func (h ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.App.ViewState())
}

func (h ViewHandler) PutCriteria(w http.ResponseWriter, r *http.Request) {
	var c query.Criteria
	if !decodeJSON(w, r, &c) {
		return
	}
	writeJSON(w, h.App.SetCriteria(c))
}

func (h ViewHandler) Next(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.App.NextPage())
}

func (h ViewHandler) Prev(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.App.PrevPage())
}

type pageReq struct {
	Page int `json:"page"`
}

func (h ViewHandler) GoTo(w http.ResponseWriter, r *http.Request) {
	var req pageReq
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, h.App.GoToPage(req.Page))
}
