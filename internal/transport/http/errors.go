package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidID           = "invalid_id"
	codeForbidden           = "forbidden"
	codeInvalidAmounts      = "invalid_amounts"
	codeInvalidMinimumDue   = "invalid_minimum_due"
	codeHoldingAlreadyPaid  = "holding_already_paid"
	codeStatusIncompatible  = "application_status_incompatible"
	codeApplicationNotFound = "application_not_found"
	codeFormNotFound        = "form_not_found"
	codeFirmNotFound        = "firm_not_found"
	codeHoldingNotFound     = "holding_not_found"
	codeFirmNameRequired    = "firm_name_required"
	codeFormNameRequired    = "form_name_required"
	codeMemberUserRequired  = "member_user_required"
	codeHouseholdRequired   = "household_required"
	codeActorRequired       = "actor_required"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error      string           `json:"error"`
	Code       string           `json:"code"`
	Violations []violationEntry `json:"violations,omitempty"`
}

type violationEntry struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorWith(w, status, errorResponse{Error: msg, Code: code})
}

func writeErrorWith(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(resp)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
