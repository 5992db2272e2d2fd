package relayhandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/connection-relay/api"
	"github.com/ruteri/connection-relay/interfaces"
)

// maxRequestSize bounds the request body. A public key fits comfortably.
const maxRequestSize = 64 << 10

// Handler serves client config requests on behalf of a ClientConfigProvider.
type Handler struct {
	provider interfaces.ClientConfigProvider
	log      *slog.Logger
}

// NewHandler creates a handler that delegates to provider.
func NewHandler(provider interfaces.ClientConfigProvider, log *slog.Logger) *Handler {
	return &Handler{
		provider: provider,
		log:      log,
	}
}

// RegisterRoutes registers:
//   - POST /api/client-config/{local_user_id}
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/client-config/{local_user_id}", h.HandleClientConfig)
}

// HandleClientConfig returns the user's connection state sealed for the
// public key in the request body.
func (h *Handler) HandleClientConfig(w http.ResponseWriter, r *http.Request) {
	rawUserID := r.PathValue("local_user_id")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(rawUserID)
		if err != nil {
			h.log.Warn("Malformed user id", "err", err, "userID", rawUserID)
			http.Error(w, "Invalid user id", http.StatusBadRequest)
			return
		}
		rawUserID = unescaped
	}

	userID, err := interfaces.NewLocalUserID(rawUserID)
	if err != nil {
		h.log.Warn("Invalid user id", "err", err)
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	var req api.ClientConfigRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize)).Decode(&req); err != nil {
		h.log.Warn("Malformed request body", "err", err, "userID", userID)
		http.Error(w, "Malformed request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PublicKey) == "" {
		http.Error(w, "Missing publicKey", http.StatusBadRequest)
		return
	}

	envelope, err := h.provider.GetClientConfig(r.Context(), userID, req.PublicKey)
	if err != nil {
		status, message := errorStatus(err)
		h.log.Error("Failed to get client config", "err", err, "userID", userID, "status", status)
		http.Error(w, message, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, interfaces.ErrInvalidUserID):
		return http.StatusBadRequest, "Invalid user id"
	case errors.Is(err, interfaces.ErrInvalidRecipientKey):
		return http.StatusBadRequest, "Invalid publicKey"
	case errors.Is(err, interfaces.ErrFetchConnection), errors.Is(err, interfaces.ErrCreateConnection):
		return http.StatusBadGateway, "Connection platform unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
