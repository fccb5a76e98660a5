package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

func (r *ApplicationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// AdvanceStatus is a guarded update: it writes the new status only while the
// current one is in expected. Repeating the same write is harmless, which is
// what the workflow's retry safety rests on.
func (r *ApplicationRepository) AdvanceStatus(ctx context.Context, appID string, expected []domain.ApplicationStatus, to domain.ApplicationStatus, at time.Time) (bool, error) {
	const stmt = `
UPDATE applications
SET status = $2, updated_at = $3
WHERE id = $1 AND status = ANY($4)`

	statuses := make([]string, 0, len(expected))
	for _, s := range expected {
		statuses = append(statuses, string(s))
	}

	tag, err := r.exec(ctx, stmt, appID, string(to), at, statuses)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("advance application status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, appID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	if !exists {
		return false, domain.ErrApplicationNotFound
	}
	return false, nil
}

func (r *ApplicationRepository) AppendTimeline(ctx context.Context, appID string, entry domain.TimelineEntry) error {
	const stmt = `
INSERT INTO application_timeline (application_id, at, actor, event, meta)
VALUES ($1, $2, $3, $4, $5)`

	meta := entry.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode timeline meta: %w", err)
	}

	if _, err := r.exec(ctx, stmt, appID, entry.At, entry.By, entry.Event, payload); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrApplicationNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("append timeline: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) Get(ctx context.Context, appID string) (domain.Application, error) {
	const query = `
SELECT id, form_id, household_id, status, created_at, updated_at
FROM applications
WHERE id = $1`

	var a domain.Application
	var status string
	err := r.queryRow(ctx, query, appID).
		Scan(&a.ID, &a.FormID, &a.HouseholdID, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Application{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Application{}, domain.ErrApplicationNotFound
		}
		return domain.Application{}, fmt.Errorf("get application: %w", err)
	}
	a.Status = domain.ApplicationStatus(status)
	return a, nil
}

// Timeline returns the application's entries in append order.
func (r *ApplicationRepository) Timeline(ctx context.Context, appID string) ([]domain.TimelineEntry, error) {
	const query = `
SELECT at, actor, event, meta
FROM application_timeline
WHERE application_id = $1
ORDER BY id`

	rows, err := r.query(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	defer rows.Close()

	var entries []domain.TimelineEntry
	for rows.Next() {
		var e domain.TimelineEntry
		var payload []byte
		if err := rows.Scan(&e.At, &e.By, &e.Event, &payload); err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		if err := json.Unmarshal(payload, &e.Meta); err != nil {
			return nil, fmt.Errorf("decode timeline meta: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *ApplicationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ApplicationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *ApplicationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
