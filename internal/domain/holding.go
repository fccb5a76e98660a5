package domain

import "time"

type HoldingStatus string

const (
	HoldingStatusPending  HoldingStatus = "pending"
	HoldingStatusPaid     HoldingStatus = "paid"
	HoldingStatusCanceled HoldingStatus = "canceled"
)

// DepositAmounts are the holding-deposit line items in integer currency units.
type DepositAmounts struct {
	First    int64
	Last     int64
	Security int64
	Key      int64
}

func (a DepositAmounts) Sum() int64 {
	return a.First + a.Last + a.Security + a.Key
}

// HoldingRequest tracks the money a household must pay before lease
// assignment. The token doubles as the primary key and the client-facing
// payment-link identifier; it must not be derivable from the application
// or firm ids.
//
// At most one holding request with status pending or paid may exist per
// (application, firm) pair; canceled records are retained for audit and do
// not count toward that constraint.
type HoldingRequest struct {
	Token         string
	ApplicationID string
	FirmID        string
	HouseholdID   string
	Amounts       DepositAmounts
	MonthlyRent   int64
	Total         int64
	MinimumDue    int64
	Status        HoldingStatus
	PaidAmount    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PaidAt        *time.Time
	CanceledAt    *time.Time
}
