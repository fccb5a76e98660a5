package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/app"
)

// PaymentEventConsumer applies one payment-processor event.
type PaymentEventConsumer interface {
	OnPaymentEvent(ctx context.Context, ev app.PaymentEvent) error
}

// HandlePaymentEvent returns the handler for POST /payments/events, the
// payment processor's delivery endpoint. Duplicate and stale events are
// acknowledged with 200 so the processor stops redelivering; only a store
// failure earns a 500 and a retry.
func HandlePaymentEvent(svc PaymentEventConsumer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentEventRequest
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		err := svc.OnPaymentEvent(r.Context(), app.PaymentEvent{
			Kind:            req.Kind,
			HoldingID:       req.HoldingID,
			AmountConfirmed: req.AmountConfirmed,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
	}
}

type paymentEventRequest struct {
	Kind            string `json:"kind"`
	HoldingID       string `json:"holding_id"`
	AmountConfirmed int64  `json:"amount_confirmed"`
}
