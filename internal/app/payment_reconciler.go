package app

import (
	"context"
	"errors"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/rs/zerolog"
)

// PaymentEvent is a confirmation delivered by the external payment
// processor. Delivery is at-least-once; duplicates and (rarely) reordering
// must be tolerated. Authenticity verification happens upstream.
type PaymentEvent struct {
	Kind            string
	HoldingID       string
	AmountConfirmed int64
}

const PaymentEventSucceeded = "payment_succeeded"

// actorPaymentProcessor attributes reconciler-driven timeline entries.
const actorPaymentProcessor = "payment-processor"

// PaymentEventReconciler consumes payment confirmations and converges the
// holding request and the application to a consistent state regardless of
// how many times, or in what order, the processor delivers them.
type PaymentEventReconciler struct {
	holdings *HoldingRequestManager
	apps     *ApplicationStateMachine
	log      zerolog.Logger
}

func NewPaymentEventReconciler(holdings *HoldingRequestManager, apps *ApplicationStateMachine, log zerolog.Logger) *PaymentEventReconciler {
	return &PaymentEventReconciler{
		holdings: holdings,
		apps:     apps,
		log:      log,
	}
}

// OnPaymentEvent applies one event. It returns an error only for store
// failures, where a redelivery can succeed; stale, duplicate, and unknown
// references are acknowledged and logged so the sender never retries them.
func (r *PaymentEventReconciler) OnPaymentEvent(ctx context.Context, ev PaymentEvent) error {
	if ev.Kind != PaymentEventSucceeded {
		// Account status changes, payouts and the like touch firm-level
		// payment metadata, not the application/hold state machine.
		r.log.Debug().Str("kind", ev.Kind).Msg("ignoring non-success payment event")
		return nil
	}
	if ev.HoldingID == "" {
		return nil
	}

	hold, alreadyApplied, err := r.holdings.MarkPaid(ctx, ev.HoldingID, ev.AmountConfirmed)
	switch {
	case errors.Is(err, domain.ErrHoldingNotFound):
		r.log.Warn().
			Str("holding_token", ev.HoldingID).
			Msg("payment confirmation references unknown holding request")
		return nil
	case errors.Is(err, domain.ErrHoldingCanceled):
		r.log.Warn().
			Str("holding_token", ev.HoldingID).
			Int64("amount_confirmed", ev.AmountConfirmed).
			Msg("payment confirmation for canceled holding request")
		return nil
	case err != nil:
		return err
	}
	if alreadyApplied {
		// The primary idempotency guarantee: a redelivered success event
		// re-triggers nothing downstream.
		return nil
	}

	meta := map[string]any{
		"amount_confirmed": ev.AmountConfirmed,
		"holding_token":    hold.Token,
	}

	advanced, err := r.apps.Advance(ctx, hold.ApplicationID,
		[]domain.ApplicationStatus{domain.ApplicationStatusApprovedPendingPayment},
		domain.ApplicationStatusApprovedPendingLease,
		actorPaymentProcessor, domain.TimelineEventHoldingPaid, meta)
	if err != nil {
		return err
	}
	if !advanced {
		// The application left approved_pending_payment in the interim.
		// Record the payment for audit without forcing an illegal status.
		r.log.Warn().
			Str("application_id", hold.ApplicationID).
			Str("holding_token", hold.Token).
			Msg("holding paid but application not awaiting payment")
		meta["anomaly"] = "status_incompatible"
		return r.apps.RecordEvent(ctx, hold.ApplicationID, actorPaymentProcessor, domain.TimelineEventHoldingPaid, meta)
	}
	return nil
}
