package app

import (
	"context"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/clock"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/rs/zerolog"
)

type ApplicationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// AdvanceStatus performs a conditional status update. It reports false
	// when the application exists but its status is not in expected, and
	// domain.ErrApplicationNotFound when it does not exist.
	AdvanceStatus(ctx context.Context, appID string, expected []domain.ApplicationStatus, to domain.ApplicationStatus, at time.Time) (bool, error)
	AppendTimeline(ctx context.Context, appID string, entry domain.TimelineEntry) error
}

// ApplicationStateMachine is the only write path for application status and
// timeline. It does not re-validate that callers request a legal edge; the
// orchestrator and reconciler only ever request the edges the workflow
// defines.
type ApplicationStateMachine struct {
	repo  ApplicationRepository
	clock clock.Clock
	log   zerolog.Logger
}

func NewApplicationStateMachine(repo ApplicationRepository, clk clock.Clock, log zerolog.Logger) *ApplicationStateMachine {
	return &ApplicationStateMachine{
		repo:  repo,
		clock: clk,
		log:   log,
	}
}

// Advance moves the application to the new status when its current status is
// one of expected, appending exactly one status.change timeline entry in the
// same transaction. An incompatible current status reports false without
// error, which is what lets the payment reconciler attempt a transition
// without forcing an illegal one.
func (m *ApplicationStateMachine) Advance(ctx context.Context, appID string, expected []domain.ApplicationStatus, to domain.ApplicationStatus, actor, cause string, meta map[string]any) (bool, error) {
	now := m.clock.Now()

	entryMeta := map[string]any{
		"to":  string(to),
		"via": cause,
	}
	for k, v := range meta {
		entryMeta[k] = v
	}

	advanced := false
	err := m.repo.WithTx(ctx, func(txCtx context.Context) error {
		ok, err := m.repo.AdvanceStatus(txCtx, appID, expected, to, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		advanced = true
		return m.repo.AppendTimeline(txCtx, appID, domain.TimelineEntry{
			At:    now,
			By:    actor,
			Event: domain.TimelineEventStatusChange,
			Meta:  entryMeta,
		})
	})
	if err != nil {
		return false, err
	}
	return advanced, nil
}

// RecordEvent appends a timeline entry without touching the status. Used for
// audit records such as a payment confirmation arriving after the
// application left the pending-payment state.
func (m *ApplicationStateMachine) RecordEvent(ctx context.Context, appID, actor, event string, meta map[string]any) error {
	return m.repo.AppendTimeline(ctx, appID, domain.TimelineEntry{
		At:    m.clock.Now(),
		By:    actor,
		Event: event,
		Meta:  meta,
	})
}
