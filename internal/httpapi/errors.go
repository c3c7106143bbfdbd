package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"jobtracker-engine/internal/domain"
	"jobtracker-engine/internal/remote"
	"jobtracker-engine/internal/tracker"
)

type APIError struct {
	Error struct {
		Code      string   `json:"code"`
		Message   string   `json:"message"`
		Fields    []string `json:"fields,omitempty"`
		RequestID string   `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeAppError maps tracker, domain and remote errors onto the envelope.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	var re *remote.RemoteError
	switch {
	case errors.As(err, &ve):
		var e APIError
		e.Error.Code = "validation_failed"
		e.Error.Message = ve.Error()
		e.Error.Fields = ve.Fields
		e.Error.RequestID = RequestIDFrom(r.Context())
		WriteJSON(w, http.StatusBadRequest, e)
	case errors.Is(err, tracker.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, tracker.ErrSyncDisabled):
		WriteError(w, r, http.StatusConflict, "sync_disabled", err.Error())
	case errors.As(err, &re):
		msg := re.Message
		if msg == "" {
			msg = "remote store request failed"
		}
		WriteError(w, r, http.StatusBadGateway, "remote_failed", msg)
	default:
		log.Printf("level=error msg=\"request failed\" request_id=%s path=%s err=%q", RequestIDFrom(r.Context()), r.URL.Path, err.Error())
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
