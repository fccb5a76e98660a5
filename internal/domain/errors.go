package domain

import "errors"

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrFormNotFound        = errors.New("form not found")
	ErrFirmNotFound        = errors.New("firm not found")
	ErrHoldingNotFound     = errors.New("holding request not found")
	ErrHoldingAlreadyPaid  = errors.New("holding request already paid")
	ErrHoldingCanceled     = errors.New("holding request canceled")
	ErrForbidden           = errors.New("actor not authorized for firm")
	ErrInvalidMinimumDue   = errors.New("minimum due out of range")
	ErrStatusIncompatible  = errors.New("application status incompatible")
	ErrHouseholdRequired   = errors.New("household id required")
	ErrFirmNameRequired    = errors.New("firm name required")
	ErrFormNameRequired    = errors.New("form name required")
	ErrMemberUserRequired  = errors.New("member user id required")
	ErrInvalidID           = errors.New("invalid id")
)

// InvalidAmountsError carries the cap violations from deposit validation so
// callers can render precise per-field messaging.
type InvalidAmountsError struct {
	Violations []CapViolation
}

func (e *InvalidAmountsError) Error() string {
	return "deposit amounts violate caps"
}
