package domain

import "time"

type ApplicationStatus string

const (
	ApplicationStatusDraft                  ApplicationStatus = "draft"
	ApplicationStatusSubmitted              ApplicationStatus = "submitted"
	ApplicationStatusApprovedPendingPayment ApplicationStatus = "approved_pending_payment"
	ApplicationStatusApprovedReadyToLease   ApplicationStatus = "approved_ready_to_lease"
	ApplicationStatusApprovedPendingLease   ApplicationStatus = "approved_pending_lease"
	ApplicationStatusRejected               ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn              ApplicationStatus = "withdrawn"
)

// Application is a household's rental application against a firm's form.
type Application struct {
	ID          string
	FormID      string
	HouseholdID string
	Status      ApplicationStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimelineEntry is one append-only audit record on an application.
// The timeline is monotonically growing and never rewritten.
type TimelineEntry struct {
	At    time.Time
	By    string
	Event string
	Meta  map[string]any
}

const (
	TimelineEventStatusChange = "status.change"
	TimelineEventSubmitted    = "application.submitted"
	TimelineEventHoldingPaid  = "payment.holding_paid"
)
