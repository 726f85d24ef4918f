package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-booking-webhook/internal/fulfillment"
	"github.com/wolfman30/clinic-booking-webhook/internal/reply"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

const maxBodyBytes = 1 << 20

// Fulfiller answers one decoded callback.
type Fulfiller interface {
	Handle(ctx context.Context, req fulfillment.Request) reply.Reply
}

// Handler serves CX fulfillment callbacks over HTTP.
type Handler struct {
	fulfiller Fulfiller
	logger    *logging.Logger
}

func NewHandler(fulfiller Fulfiller, logger *logging.Logger) *Handler {
	if fulfiller == nil {
		panic("webhook: fulfiller cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{fulfiller: fulfiller, logger: logger}
}

// Fulfill handles POST /webhook. Malformed bodies get a 400 carrying the
// fallback reply so the orchestrator still has something to say.
func (h *Handler) Fulfill(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	req, err := DecodeRequest(body)
	if err != nil {
		h.logger.Warn("rejecting fulfillment callback",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, EncodeReply(reply.Fallback()))
		return
	}

	out := h.fulfiller.Handle(r.Context(), req)
	writeJSON(w, http.StatusOK, EncodeReply(out))
}

// HealthCheck returns a simple health check response.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
