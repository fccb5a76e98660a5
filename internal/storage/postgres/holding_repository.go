package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HoldingRepository struct {
	pool *pgxpool.Pool
}

func NewHoldingRepository(pool *pgxpool.Pool) *HoldingRepository {
	return &HoldingRepository{pool: pool}
}

const holdingColumns = `token, application_id, firm_id, household_id,
first_amount, last_amount, security_amount, key_amount,
monthly_rent, total, minimum_due, status, paid_amount,
created_at, updated_at, paid_at, canceled_at`

func (r *HoldingRepository) FindActive(ctx context.Context, appID, firmID string) (*domain.HoldingRequest, error) {
	query := `
SELECT ` + holdingColumns + `
FROM holding_requests
WHERE application_id = $1 AND firm_id = $2 AND status IN ('pending', 'paid')`

	h, err := scanHolding(r.queryRow(ctx, query, appID, firmID))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active holding: %w", err)
	}
	return &h, nil
}

// UpsertActive is the single conditional write that keeps the one-active-
// hold-per-pair invariant: the conflict target is the partial unique index
// over (application_id, firm_id) for pending/paid rows, the update arm only
// fires while the existing row is still pending, and a paid row yields no
// row at all, which surfaces as ErrHoldingAlreadyPaid. The existing row's
// token is deliberately left alone so issued payment links stay stable.
func (r *HoldingRepository) UpsertActive(ctx context.Context, hold domain.HoldingRequest) (domain.HoldingRequest, error) {
	stmt := `
INSERT INTO holding_requests (` + holdingColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending', 0, $12, $13, NULL, NULL)
ON CONFLICT (application_id, firm_id) WHERE status IN ('pending', 'paid')
DO UPDATE SET
	household_id    = EXCLUDED.household_id,
	first_amount    = EXCLUDED.first_amount,
	last_amount     = EXCLUDED.last_amount,
	security_amount = EXCLUDED.security_amount,
	key_amount      = EXCLUDED.key_amount,
	monthly_rent    = EXCLUDED.monthly_rent,
	total           = EXCLUDED.total,
	minimum_due     = EXCLUDED.minimum_due,
	updated_at      = EXCLUDED.updated_at
WHERE holding_requests.status = 'pending'
RETURNING ` + holdingColumns

	row := r.queryRow(ctx, stmt,
		hold.Token,
		hold.ApplicationID,
		hold.FirmID,
		hold.HouseholdID,
		hold.Amounts.First,
		hold.Amounts.Last,
		hold.Amounts.Security,
		hold.Amounts.Key,
		hold.MonthlyRent,
		hold.Total,
		hold.MinimumDue,
		hold.CreatedAt,
		hold.UpdatedAt,
	)
	out, err := scanHolding(row)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.HoldingRequest{}, domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.HoldingRequest{}, domain.ErrApplicationNotFound
		}
		if err == pgx.ErrNoRows {
			// Conflict row exists but is no longer pending: paid wins.
			return domain.HoldingRequest{}, domain.ErrHoldingAlreadyPaid
		}
		return domain.HoldingRequest{}, fmt.Errorf("upsert holding: %w", err)
	}
	return out, nil
}

func (r *HoldingRepository) CancelPending(ctx context.Context, appID, firmID string, at time.Time) error {
	const stmt = `
UPDATE holding_requests
SET status = 'canceled', canceled_at = $3, updated_at = $3
WHERE application_id = $1 AND firm_id = $2 AND status = 'pending'`

	if _, err := r.exec(ctx, stmt, appID, firmID, at); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("cancel pending holding: %w", err)
	}
	// Zero rows affected means nothing was pending; that is the documented
	// no-op, not an error.
	return nil
}

func (r *HoldingRepository) MarkPaid(ctx context.Context, token string, amount int64, at time.Time) (domain.HoldingRequest, bool, error) {
	stmt := `
UPDATE holding_requests
SET status = 'paid', paid_amount = $2, paid_at = $3, updated_at = $3
WHERE token = $1 AND status = 'pending'
RETURNING ` + holdingColumns

	h, err := scanHolding(r.queryRow(ctx, stmt, token, amount, at))
	if err == nil {
		return h, true, nil
	}
	if err != pgx.ErrNoRows {
		return domain.HoldingRequest{}, false, fmt.Errorf("mark holding paid: %w", err)
	}

	// The guard failed: distinguish a duplicate confirmation from a genuinely
	// unknown or canceled record.
	existing, err := r.GetByToken(ctx, token)
	if err != nil {
		return domain.HoldingRequest{}, false, err
	}
	switch existing.Status {
	case domain.HoldingStatusPaid:
		return existing, false, nil
	case domain.HoldingStatusCanceled:
		return domain.HoldingRequest{}, false, domain.ErrHoldingCanceled
	default:
		// A concurrent writer flipped the row back to pending between the
		// update and the read; treat as a retryable store race.
		return domain.HoldingRequest{}, false, fmt.Errorf("mark holding paid: unexpected status %q", existing.Status)
	}
}

func (r *HoldingRepository) GetByToken(ctx context.Context, token string) (domain.HoldingRequest, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding_requests WHERE token = $1`

	h, err := scanHolding(r.queryRow(ctx, query, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.HoldingRequest{}, domain.ErrHoldingNotFound
		}
		return domain.HoldingRequest{}, fmt.Errorf("get holding: %w", err)
	}
	return h, nil
}

func scanHolding(row pgx.Row) (domain.HoldingRequest, error) {
	var h domain.HoldingRequest
	var status string
	err := row.Scan(
		&h.Token,
		&h.ApplicationID,
		&h.FirmID,
		&h.HouseholdID,
		&h.Amounts.First,
		&h.Amounts.Last,
		&h.Amounts.Security,
		&h.Amounts.Key,
		&h.MonthlyRent,
		&h.Total,
		&h.MinimumDue,
		&status,
		&h.PaidAmount,
		&h.CreatedAt,
		&h.UpdatedAt,
		&h.PaidAt,
		&h.CanceledAt,
	)
	if err != nil {
		return domain.HoldingRequest{}, err
	}
	h.Status = domain.HoldingStatus(status)
	return h, nil
}

func (r *HoldingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *HoldingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
