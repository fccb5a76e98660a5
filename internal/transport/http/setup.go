package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/app"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/go-chi/chi/v5"
)

// actorHeader carries the authenticated landlord-side user id; session
// verification happens upstream of this service.
const actorHeader = "X-Actor-ID"

// HoldSetup is the minimal interface needed to configure a holding deposit.
type HoldSetup interface {
	Setup(ctx context.Context, in app.SetupInput) (app.SetupResult, error)
}

// HandleHoldingSetup returns the handler for POST /applications/{applicationID}/holding-setup.
func HandleHoldingSetup(svc HoldSetup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get(actorHeader)
		if actor == "" {
			writeError(w, http.StatusBadRequest, codeActorRequired, "actor id required")
			return
		}

		var req holdingSetupRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.Setup(r.Context(), app.SetupInput{
			ApplicationID: chi.URLParam(r, "applicationID"),
			Actor:         actor,
			MonthlyRent:   req.MonthlyRent,
			Amounts: domain.DepositAmounts{
				First:    req.Amounts.First,
				Last:     req.Amounts.Last,
				Security: req.Amounts.Security,
				Key:      req.Amounts.Key,
			},
			MinimumDue: req.MinimumDue,
		})
		if err != nil {
			writeSetupError(w, err)
			return
		}

		resp := holdingSetupResponse{
			Status:     string(res.Status),
			Total:      res.Total,
			MinimumDue: res.MinimumDue,
		}
		if res.Token != "" {
			resp.Token = &res.Token
			resp.PayURL = &res.PayURL
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeSetupError(w http.ResponseWriter, err error) {
	var amountsErr *domain.InvalidAmountsError
	switch {
	case errors.As(err, &amountsErr):
		resp := errorResponse{Error: amountsErr.Error(), Code: codeInvalidAmounts}
		for _, v := range amountsErr.Violations {
			resp.Violations = append(resp.Violations, violationEntry{Field: v.Field, Reason: v.Reason})
		}
		writeErrorWith(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, domain.ErrInvalidMinimumDue):
		writeError(w, http.StatusUnprocessableEntity, codeInvalidMinimumDue, err.Error())
	case errors.Is(err, domain.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, codeApplicationNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, domain.ErrHoldingAlreadyPaid):
		writeError(w, http.StatusConflict, codeHoldingAlreadyPaid, err.Error())
	case errors.Is(err, domain.ErrStatusIncompatible):
		writeError(w, http.StatusConflict, codeStatusIncompatible, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type holdingSetupRequest struct {
	MonthlyRent int64               `json:"monthly_rent"`
	Amounts     setupAmountsRequest `json:"amounts"`
	MinimumDue  int64               `json:"minimum_due"`
}

type setupAmountsRequest struct {
	First    int64 `json:"first"`
	Last     int64 `json:"last"`
	Security int64 `json:"security"`
	Key      int64 `json:"key"`
}

type holdingSetupResponse struct {
	Status     string  `json:"status"`
	Token      *string `json:"token"`
	PayURL     *string `json:"pay_url"`
	Total      int64   `json:"total"`
	MinimumDue int64   `json:"minimum_due"`
}
