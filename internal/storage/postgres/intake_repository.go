package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IntakeRepository struct {
	pool *pgxpool.Pool
}

func NewIntakeRepository(pool *pgxpool.Pool) *IntakeRepository {
	return &IntakeRepository{pool: pool}
}

func (r *IntakeRepository) CreateFirm(ctx context.Context, firm domain.Firm) error {
	const stmt = `INSERT INTO firms (id, name, created_at) VALUES ($1, $2, $3)`

	if _, err := r.exec(ctx, stmt, firm.ID, firm.Name, firm.CreatedAt); err != nil {
		return fmt.Errorf("create firm: %w", err)
	}
	return nil
}

func (r *IntakeRepository) AddFirmMember(ctx context.Context, member domain.FirmMember) error {
	const stmt = `
INSERT INTO firm_members (firm_id, user_id, role, active, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (firm_id, user_id) DO UPDATE SET role = EXCLUDED.role, active = EXCLUDED.active`

	if _, err := r.exec(ctx, stmt, member.FirmID, member.UserID, member.Role, member.Active, member.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrFirmNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("add firm member: %w", err)
	}
	return nil
}

func (r *IntakeRepository) CreateForm(ctx context.Context, form domain.Form) error {
	const stmt = `INSERT INTO forms (id, firm_id, name, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.exec(ctx, stmt, form.ID, form.FirmID, form.Name, form.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrFirmNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create form: %w", err)
	}
	return nil
}

// CreateApplication writes the application and its first timeline entry in
// one transaction so a submitted application always has its audit trail.
func (r *IntakeRepository) CreateApplication(ctx context.Context, application domain.Application, entry domain.TimelineEntry) error {
	return withTx(ctx, r.pool, func(txCtx context.Context) error {
		const appStmt = `
INSERT INTO applications (id, form_id, household_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

		if _, err := r.exec(txCtx, appStmt,
			application.ID,
			application.FormID,
			application.HouseholdID,
			string(application.Status),
			application.CreatedAt,
			application.UpdatedAt,
		); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrFormNotFound
			}
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("create application: %w", err)
		}

		meta, err := json.Marshal(entry.Meta)
		if err != nil {
			return fmt.Errorf("encode timeline meta: %w", err)
		}

		const entryStmt = `
INSERT INTO application_timeline (application_id, at, actor, event, meta)
VALUES ($1, $2, $3, $4, $5)`

		if _, err := r.exec(txCtx, entryStmt, application.ID, entry.At, entry.By, entry.Event, meta); err != nil {
			return fmt.Errorf("append timeline: %w", err)
		}
		return nil
	})
}

func (r *IntakeRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}
