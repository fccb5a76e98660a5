package app

import (
	"context"
	"fmt"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/rs/zerolog"
)

// HoldSetupService is the "configure holding deposit" use case: it decides
// between the no-hold and hold-required branches and coordinates the holding
// manager and the application state machine. Sub-steps are separate document
// writes; each is individually guarded and idempotent so a retried call
// converges rather than duplicating state.
type HoldSetupService struct {
	firms    FirmResolver
	auth     AuthorizationGate
	holdings *HoldingRequestManager
	apps     *ApplicationStateMachine
	caps     domain.CapTable
	log      zerolog.Logger
}

func NewHoldSetupService(firms FirmResolver, auth AuthorizationGate, holdings *HoldingRequestManager, apps *ApplicationStateMachine, caps domain.CapTable, log zerolog.Logger) *HoldSetupService {
	return &HoldSetupService{
		firms:    firms,
		auth:     auth,
		holdings: holdings,
		apps:     apps,
		caps:     caps,
		log:      log,
	}
}

type SetupInput struct {
	ApplicationID string
	Actor         string
	MonthlyRent   int64
	Amounts       domain.DepositAmounts
	MinimumDue    int64
}

type SetupResult struct {
	Status     domain.ApplicationStatus
	Token      string
	PayURL     string
	Total      int64
	MinimumDue int64
}

const (
	causeHoldingSetup     = "holding_setup"
	causeHoldingSetupNone = "holding_setup_none"
)

// setupExpected are the statuses a setup call may move the application from.
// Re-running setup on an already-configured application is legal (the
// landlord is reconfiguring); anything else, such as withdrawn, is not.
var setupExpected = []domain.ApplicationStatus{
	domain.ApplicationStatusSubmitted,
	domain.ApplicationStatusApprovedPendingPayment,
	domain.ApplicationStatusApprovedReadyToLease,
}

func (s *HoldSetupService) Setup(ctx context.Context, in SetupInput) (SetupResult, error) {
	ref, err := s.firms.ResolveFirmForApplication(ctx, in.ApplicationID)
	if err != nil {
		return SetupResult{}, err
	}

	ok, err := s.auth.IsAuthorized(ctx, in.Actor, ref.FirmID)
	if err != nil {
		return SetupResult{}, fmt.Errorf("authorize actor: %w", err)
	}
	if !ok {
		return SetupResult{}, domain.ErrForbidden
	}

	existing, err := s.holdings.FindActive(ctx, in.ApplicationID, ref.FirmID)
	if err != nil {
		return SetupResult{}, err
	}
	if existing != nil && existing.Status == domain.HoldingStatusPaid {
		return SetupResult{}, domain.ErrHoldingAlreadyPaid
	}

	if in.MinimumDue == 0 {
		return s.setupWithoutHold(ctx, in, ref.FirmID, existing)
	}
	return s.setupWithHold(ctx, in, ref)
}

func (s *HoldSetupService) setupWithoutHold(ctx context.Context, in SetupInput, firmID string, existing *domain.HoldingRequest) (SetupResult, error) {
	if existing != nil {
		// Best-effort: another actor may have paid or canceled it in the
		// meantime, and a stale pending hold does not block this branch.
		if err := s.holdings.CancelPending(ctx, in.ApplicationID, firmID); err != nil {
			s.log.Warn().
				Err(err).
				Str("application_id", in.ApplicationID).
				Str("firm_id", firmID).
				Msg("cancel of stale pending holding request failed")
		}
	}

	advanced, err := s.apps.Advance(ctx, in.ApplicationID, setupExpected, domain.ApplicationStatusApprovedReadyToLease, in.Actor, causeHoldingSetupNone, nil)
	if err != nil {
		return SetupResult{}, err
	}
	if !advanced {
		return SetupResult{}, domain.ErrStatusIncompatible
	}

	return SetupResult{
		Status: domain.ApplicationStatusApprovedReadyToLease,
	}, nil
}

func (s *HoldSetupService) setupWithHold(ctx context.Context, in SetupInput, ref ApplicationRef) (SetupResult, error) {
	res := domain.ValidateDeposit(in.Amounts, in.MonthlyRent, s.caps)
	if !res.OK {
		return SetupResult{}, &domain.InvalidAmountsError{Violations: res.Violations}
	}
	if in.MinimumDue < 0 || in.MinimumDue > res.Total {
		return SetupResult{}, domain.ErrInvalidMinimumDue
	}

	hold, err := s.holdings.Upsert(ctx, UpsertHoldingInput{
		ApplicationID: in.ApplicationID,
		FirmID:        ref.FirmID,
		HouseholdID:   ref.HouseholdID,
		Amounts:       in.Amounts,
		MonthlyRent:   in.MonthlyRent,
		MinimumDue:    in.MinimumDue,
	})
	if err != nil {
		return SetupResult{}, err
	}

	advanced, err := s.apps.Advance(ctx, in.ApplicationID, setupExpected, domain.ApplicationStatusApprovedPendingPayment, in.Actor, causeHoldingSetup, map[string]any{
		"total":       hold.Total,
		"minimum_due": hold.MinimumDue,
	})
	if err != nil {
		return SetupResult{}, err
	}
	if !advanced {
		return SetupResult{}, domain.ErrStatusIncompatible
	}

	return SetupResult{
		Status:     domain.ApplicationStatusApprovedPendingPayment,
		Token:      hold.Token,
		PayURL:     "/hold/" + hold.Token,
		Total:      hold.Total,
		MinimumDue: hold.MinimumDue,
	}, nil
}
