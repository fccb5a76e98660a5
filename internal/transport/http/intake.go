package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Intake covers the upstream record creation the workflow depends on.
type Intake interface {
	CreateFirm(ctx context.Context, name string) (domain.Firm, error)
	AddFirmMember(ctx context.Context, firmID, userID, role string) (domain.FirmMember, error)
	CreateForm(ctx context.Context, firmID, name string) (domain.Form, error)
	SubmitApplication(ctx context.Context, formID, householdID string) (domain.Application, error)
}

func HandleCreateFirm(svc Intake) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		firm, err := svc.CreateFirm(r.Context(), req.Name)
		if err != nil {
			writeIntakeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, firmResponse{ID: firm.ID, Name: firm.Name, CreatedAt: firm.CreatedAt})
	}
}

func HandleAddFirmMember(svc Intake) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		member, err := svc.AddFirmMember(r.Context(), chi.URLParam(r, "firmID"), req.UserID, req.Role)
		if err != nil {
			writeIntakeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, memberResponse{FirmID: member.FirmID, UserID: member.UserID, Role: member.Role})
	}
}

func HandleCreateForm(svc Intake) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		form, err := svc.CreateForm(r.Context(), chi.URLParam(r, "firmID"), req.Name)
		if err != nil {
			writeIntakeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, formResponse{ID: form.ID, FirmID: form.FirmID, Name: form.Name})
	}
}

func HandleSubmitApplication(svc Intake) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FormID      string `json:"form_id"`
			HouseholdID string `json:"household_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		application, err := svc.SubmitApplication(r.Context(), req.FormID, req.HouseholdID)
		if err != nil {
			writeIntakeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, applicationResponse{
			ID:          application.ID,
			FormID:      application.FormID,
			HouseholdID: application.HouseholdID,
			Status:      string(application.Status),
			CreatedAt:   application.CreatedAt,
		})
	}
}

func writeIntakeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrFirmNameRequired):
		writeError(w, http.StatusBadRequest, codeFirmNameRequired, err.Error())
	case errors.Is(err, domain.ErrFormNameRequired):
		writeError(w, http.StatusBadRequest, codeFormNameRequired, err.Error())
	case errors.Is(err, domain.ErrMemberUserRequired):
		writeError(w, http.StatusBadRequest, codeMemberUserRequired, err.Error())
	case errors.Is(err, domain.ErrHouseholdRequired):
		writeError(w, http.StatusBadRequest, codeHouseholdRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrFirmNotFound):
		writeError(w, http.StatusNotFound, codeFirmNotFound, err.Error())
	case errors.Is(err, domain.ErrFormNotFound):
		writeError(w, http.StatusNotFound, codeFormNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type firmResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type memberResponse struct {
	FirmID string `json:"firm_id"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type formResponse struct {
	ID     string `json:"id"`
	FirmID string `json:"firm_id"`
	Name   string `json:"name"`
}

type applicationResponse struct {
	ID          string    `json:"id"`
	FormID      string    `json:"form_id"`
	HouseholdID string    `json:"household_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
