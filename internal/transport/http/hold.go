package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/go-chi/chi/v5"
)

// HoldingReader looks up a holding request by its payment-link token.
type HoldingReader interface {
	Get(ctx context.Context, token string) (domain.HoldingRequest, error)
}

// HandleGetHolding returns the handler for GET /hold/{token} — what the
// payment page renders from. The response never echoes application or firm
// identifiers; the token is the only key a payer ever sees.
func HandleGetHolding(svc HoldingReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hold, err := svc.Get(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			if errors.Is(err, domain.ErrHoldingNotFound) {
				writeError(w, http.StatusNotFound, codeHoldingNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, holdingResponse{
			Token:      hold.Token,
			Status:     string(hold.Status),
			First:      hold.Amounts.First,
			Last:       hold.Amounts.Last,
			Security:   hold.Amounts.Security,
			Key:        hold.Amounts.Key,
			Total:      hold.Total,
			MinimumDue: hold.MinimumDue,
			PaidAt:     hold.PaidAt,
		})
	}
}

type holdingResponse struct {
	Token      string     `json:"token"`
	Status     string     `json:"status"`
	First      int64      `json:"first"`
	Last       int64      `json:"last"`
	Security   int64      `json:"security"`
	Key        int64      `json:"key"`
	Total      int64      `json:"total"`
	MinimumDue int64      `json:"minimum_due"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}
