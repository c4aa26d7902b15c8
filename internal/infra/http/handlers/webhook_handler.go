package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/http/middleware"
	"github.com/xavierca1/crebit-marketplace/internal/infra/integration/wompi"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

type WebhookHandler struct {
	Recharges *usecase.ProcessRechargeUseCase
	Timeout   time.Duration
	Logger    logrus.FieldLogger
}

func NewWebhookHandler(recharges *usecase.ProcessRechargeUseCase, timeout time.Duration, logger logrus.FieldLogger) *WebhookHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookHandler{Recharges: recharges, Timeout: timeout, Logger: logger}
}

var webhookAck = map[string]bool{"received": true}

// Handle receives Wompi events. Anything the gateway should not retry is acked
// with 200, undecodable bodies included; only a bad checksum (401) or a
// server-side failure (5xx) is not.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var event usecase.WompiEvent
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&event); err != nil {
		h.Logger.WithError(err).Warn("⚠️ webhook ignored: undecodable body")
		middleware.RecordRecharge(string(usecase.RechargeMalformed))
		writeJSON(w, http.StatusOK, webhookAck)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	out, err := h.Recharges.Execute(ctx, event)
	switch {
	case err == nil:
		middleware.RecordRecharge(string(out.Outcome))
	case errors.Is(err, entity.ErrMalformedReference):
		middleware.RecordRecharge(string(usecase.RechargeMalformed))
	case errors.Is(err, entity.ErrInvalidSignature):
		middleware.RecordRecharge("invalid_signature")
		writeError(w, h.Logger, err)
		return
	default:
		middleware.RecordRecharge("error")
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, webhookAck)
}

// Reconcile pulls a transaction from the gateway and applies it if approved.
func (h *WebhookHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	out, err := h.Recharges.Reconcile(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		if errors.Is(err, wompi.ErrTransactionNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "transaction not found at the gateway")
			return
		}
		var te *usecase.TechnicalError
		if errors.As(err, &te) && (te.Code == "GATEWAY_ERROR" || te.Code == "GATEWAY_UNAVAILABLE") {
			middleware.RecordIntegrationError("wompi")
			h.Logger.WithError(err).Error("❌ wompi reconcile failed")
			writeErrorResponse(w, http.StatusBadGateway, te.Code, te.Message)
			return
		}
		writeError(w, h.Logger, err)
		return
	}
	middleware.RecordRecharge(string(out.Outcome))
	writeJSON(w, http.StatusOK, out)
}
