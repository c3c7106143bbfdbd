package httpapi

import (
	"net/http"
	"strings"
	"sync/atomic"

	"jobtracker-engine/internal/config"
	"jobtracker-engine/internal/secrets"
)

// SecretsHandler writes credentials to the OS keychain. They are read on
// the next start.
type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setSecretReq struct {
	Secret string `json:"secret"`
}

func (h SecretsHandler) set(w http.ResponseWriter, r *http.Request, account func(config.Config) string) {
	var req setSecretReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Secret) == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "secret is required")
		return
	}
	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.Set(account(cfg), req.Secret); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_failed", "failed to store secret: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) SetNotionToken(w http.ResponseWriter, r *http.Request) {
	h.set(w, r, secrets.NotionKeyringAccount)
}

func (h SecretsHandler) DeleteNotionToken(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.Delete(secrets.NotionKeyringAccount(cfg)); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) SetGoogleSecret(w http.ResponseWriter, r *http.Request) {
	h.set(w, r, secrets.GoogleKeyringAccount)
}
