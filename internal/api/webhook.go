package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/shipconnect/pkg/apperror"
	"github.com/dmitrymomot/shipconnect/pkg/logger"
	"github.com/dmitrymomot/shipconnect/pkg/shipvendor"
	"github.com/dmitrymomot/shipconnect/pkg/webhook"
)

type webhookHandler struct {
	secret    string
	maxAge    time.Duration
	forwarder Forwarder
	log       *slog.Logger
	errs      errorRenderer
}

type relayResult struct {
	EventID string `json:"event_id"`
	Relayed bool   `json:"relayed"`
}

// vendor accepts a signed vendor event and relays it to the shop callback
// stored in the session metadata. Events without a callback are acknowledged.
func (h *webhookHandler) vendor(w http.ResponseWriter, r *http.Request) {
	payload, err := webhook.VerifyRequest(h.secret, r, h.maxAge)
	if err != nil {
		h.errs.render(w, r, signatureError(err))
		return
	}

	var ev shipvendor.Event
	if err := json.Unmarshal(payload, &ev); err != nil || ev.ID == "" || ev.Type == "" {
		h.errs.render(w, r, apperror.Invalid(CodeEventInvalid, "webhook event is malformed", apperror.WithCause(err)))
		return
	}

	log := h.log.With(
		slog.String("event_id", ev.ID),
		slog.String("event_type", ev.Type),
		logger.CheckoutSessionID(ev.Session.ID),
		logger.CartID(ev.Session.CartID),
	)

	callback := ev.CallbackURL()
	if callback == "" || h.forwarder == nil {
		log.InfoContext(r.Context(), "vendor event has no callback, not relayed")
		writeJSON(w, http.StatusAccepted, relayResult{EventID: ev.ID})
		return
	}

	if err := h.forwarder.Forward(r.Context(), callback, payload); err != nil {
		if errors.Is(err, webhook.ErrCircuitOpen) {
			err = apperror.General(CodeRelayCircuitOpen, "callback temporarily disabled", apperror.WithCause(err))
		}
		h.errs.render(w, r, err)
		return
	}

	log.InfoContext(r.Context(), "vendor event relayed", logger.URL(callback))
	writeJSON(w, http.StatusAccepted, relayResult{EventID: ev.ID, Relayed: true})
}

func signatureError(err error) error {
	switch {
	case errors.Is(err, webhook.ErrPayloadTooLarge), errors.Is(err, webhook.ErrInvalidPayload):
		return apperror.Invalid(CodeEventInvalid, "webhook payload is invalid", apperror.WithCause(err))
	case errors.Is(err, webhook.ErrMissingSecret):
		return apperror.General(apperror.CodeInternal, "webhook verification is not configured", apperror.WithCause(err))
	default:
		return apperror.Auth(CodeSignatureInvalid, "webhook signature is invalid", apperror.WithCause(err))
	}
}
