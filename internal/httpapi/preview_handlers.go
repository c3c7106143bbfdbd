package httpapi

import (
	"errors"
	"net/http"

	"jobtracker-engine/internal/linkmeta"
)

type PreviewHandler struct {
	Fetcher *linkmeta.Fetcher
}

type previewReq struct {
	URL string `json:"url"`
}

func (h PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Fetcher == nil {
		WriteError(w, r, http.StatusNotFound, "preview_disabled", "link preview is disabled")
		return
	}
	var req previewReq
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Fetcher.Preview(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, linkmeta.ErrBadURL) {
			WriteError(w, r, http.StatusBadRequest, "bad_url", err.Error())
			return
		}
		WriteError(w, r, http.StatusBadGateway, "preview_failed", err.Error())
		return
	}
	writeJSON(w, p)
}
