package app

import (
	"context"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/clock"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/rs/zerolog"
)

type HoldingRepository interface {
	// FindActive returns the pending or paid record for the pair, or nil.
	FindActive(ctx context.Context, appID, firmID string) (*domain.HoldingRequest, error)
	// UpsertActive is the atomic "insert-if-absent, else update-if-not-paid"
	// primitive: a new record is inserted, a pending record is overwritten in
	// place keeping its token, and a paid record fails with
	// domain.ErrHoldingAlreadyPaid.
	UpsertActive(ctx context.Context, hold domain.HoldingRequest) (domain.HoldingRequest, error)
	// CancelPending cancels the pair's pending record; a no-op when no
	// pending record exists.
	CancelPending(ctx context.Context, appID, firmID string, at time.Time) error
	// MarkPaid transitions pending → paid guarded by the pending status.
	// It reports applied=false with the current record when the record is
	// already paid, domain.ErrHoldingCanceled when canceled, and
	// domain.ErrHoldingNotFound for an unknown token.
	MarkPaid(ctx context.Context, token string, amount int64, at time.Time) (domain.HoldingRequest, bool, error)
	GetByToken(ctx context.Context, token string) (domain.HoldingRequest, error)
}

// HoldingRequestManager owns the holding-request lifecycle. Nothing else
// writes the holding document.
type HoldingRequestManager struct {
	repo  HoldingRepository
	clock clock.Clock
	log   zerolog.Logger
}

func NewHoldingRequestManager(repo HoldingRepository, clk clock.Clock, log zerolog.Logger) *HoldingRequestManager {
	return &HoldingRequestManager{
		repo:  repo,
		clock: clk,
		log:   log,
	}
}

type UpsertHoldingInput struct {
	ApplicationID string
	FirmID        string
	HouseholdID   string
	Amounts       domain.DepositAmounts
	MonthlyRent   int64
	MinimumDue    int64
}

// Upsert creates the pair's holding request or overwrites its pending one.
// The pending record's token survives the overwrite so an already-issued
// payment link stays valid. Concurrent calls for the same pair converge on a
// single winning document via the store's conditional upsert.
func (m *HoldingRequestManager) Upsert(ctx context.Context, in UpsertHoldingInput) (domain.HoldingRequest, error) {
	now := m.clock.Now()
	return m.repo.UpsertActive(ctx, domain.HoldingRequest{
		Token:         mintToken(),
		ApplicationID: in.ApplicationID,
		FirmID:        in.FirmID,
		HouseholdID:   in.HouseholdID,
		Amounts:       in.Amounts,
		MonthlyRent:   in.MonthlyRent,
		Total:         in.Amounts.Sum(),
		MinimumDue:    in.MinimumDue,
		Status:        domain.HoldingStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// CancelPending is best-effort: if the pair's record is not pending (paid,
// canceled, or absent) nothing happens.
func (m *HoldingRequestManager) CancelPending(ctx context.Context, appID, firmID string) error {
	return m.repo.CancelPending(ctx, appID, firmID, m.clock.Now())
}

// MarkPaid applies a payment confirmation. alreadyApplied reports that the
// record was paid before this call; redelivered events land here and must
// not re-trigger downstream effects.
func (m *HoldingRequestManager) MarkPaid(ctx context.Context, token string, amountConfirmed int64) (domain.HoldingRequest, bool, error) {
	hold, applied, err := m.repo.MarkPaid(ctx, token, amountConfirmed, m.clock.Now())
	if err != nil {
		return domain.HoldingRequest{}, false, err
	}
	return hold, !applied, nil
}

func (m *HoldingRequestManager) Get(ctx context.Context, token string) (domain.HoldingRequest, error) {
	return m.repo.GetByToken(ctx, token)
}

// FindActive exposes the pair's non-canceled record for the orchestrator's
// pre-checks.
func (m *HoldingRequestManager) FindActive(ctx context.Context, appID, firmID string) (*domain.HoldingRequest, error) {
	return m.repo.FindActive(ctx, appID, firmID)
}
