package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)

	repo := NewApplicationRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("advance status only from an expected status", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		_, _, appID := testutil.SeedApplication(t, ctx, pool, uuid.NewString(), uuid.NewString())

		ok, err := repo.AdvanceStatus(ctx, appID,
			[]domain.ApplicationStatus{domain.ApplicationStatusSubmitted, domain.ApplicationStatusApprovedPendingPayment},
			domain.ApplicationStatusApprovedPendingPayment, now)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.Get(ctx, appID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusApprovedPendingPayment, got.Status)

		// Current status is no longer in the expected set.
		ok, err = repo.AdvanceStatus(ctx, appID,
			[]domain.ApplicationStatus{domain.ApplicationStatusSubmitted},
			domain.ApplicationStatusRejected, now)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err = repo.Get(ctx, appID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusApprovedPendingPayment, got.Status)
	})

	t.Run("advance status on an unknown application", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		_, err := repo.AdvanceStatus(ctx, uuid.NewString(),
			[]domain.ApplicationStatus{domain.ApplicationStatusSubmitted},
			domain.ApplicationStatusApprovedPendingPayment, now)
		require.ErrorIs(t, err, domain.ErrApplicationNotFound)
	})

	t.Run("timeline preserves append order and meta", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		_, _, appID := testutil.SeedApplication(t, ctx, pool, uuid.NewString(), uuid.NewString())

		entries := []domain.TimelineEntry{
			{At: now, By: "agent-1", Event: domain.TimelineEventStatusChange, Meta: map[string]any{"to": "approved_pending_payment"}},
			{At: now.Add(time.Minute), By: "payment-processor", Event: domain.TimelineEventHoldingPaid, Meta: map[string]any{"amount_confirmed": float64(1000)}},
			{At: now.Add(2 * time.Minute), By: "agent-1", Event: domain.TimelineEventStatusChange, Meta: nil},
		}
		for _, e := range entries {
			require.NoError(t, repo.AppendTimeline(ctx, appID, e))
		}

		got, err := repo.Timeline(ctx, appID)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, domain.TimelineEventStatusChange, got[0].Event)
		assert.Equal(t, "approved_pending_payment", got[0].Meta["to"])
		assert.Equal(t, "payment-processor", got[1].By)
		assert.Equal(t, float64(1000), got[1].Meta["amount_confirmed"])
		assert.Empty(t, got[2].Meta)
	})

	t.Run("append timeline for an unknown application", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		err := repo.AppendTimeline(ctx, uuid.NewString(), domain.TimelineEntry{
			At:    now,
			By:    "agent-1",
			Event: domain.TimelineEventStatusChange,
		})
		require.ErrorIs(t, err, domain.ErrApplicationNotFound)
	})

	t.Run("status update and timeline entry commit together", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)
		_, _, appID := testutil.SeedApplication(t, ctx, pool, uuid.NewString(), uuid.NewString())

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			ok, err := repo.AdvanceStatus(txCtx, appID,
				[]domain.ApplicationStatus{domain.ApplicationStatusSubmitted},
				domain.ApplicationStatusApprovedPendingPayment, now)
			require.NoError(t, err)
			require.True(t, ok)
			// Force a rollback after the status write.
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		got, err := repo.Get(ctx, appID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusSubmitted, got.Status)
	})

	t.Run("invalid identifier", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		_, err := repo.Get(ctx, "not-a-uuid")
		require.ErrorIs(t, err, domain.ErrInvalidID)
	})
}
