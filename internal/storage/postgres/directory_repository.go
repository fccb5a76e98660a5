package postgres

import (
	"context"
	"fmt"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/app"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DirectoryRepository backs the read-only collaborator lookups: firm
// membership checks and application→firm resolution.
type DirectoryRepository struct {
	pool *pgxpool.Pool
}

func NewDirectoryRepository(pool *pgxpool.Pool) *DirectoryRepository {
	return &DirectoryRepository{pool: pool}
}

func (r *DirectoryRepository) IsAuthorized(ctx context.Context, actorID, firmID string) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM firm_members
	WHERE firm_id = $1 AND user_id = $2 AND active
)`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, firmID, actorID).Scan(&ok); err != nil {
		if isInvalidUUID(err) {
			return false, nil
		}
		return false, fmt.Errorf("check firm membership: %w", err)
	}
	return ok, nil
}

func (r *DirectoryRepository) ResolveFirmForApplication(ctx context.Context, appID string) (app.ApplicationRef, error) {
	const query = `
SELECT f.firm_id, a.household_id
FROM applications a
JOIN forms f ON f.id = a.form_id
WHERE a.id = $1`

	var ref app.ApplicationRef
	err := r.pool.QueryRow(ctx, query, appID).Scan(&ref.FirmID, &ref.HouseholdID)
	if err != nil {
		if isInvalidUUID(err) {
			return app.ApplicationRef{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return app.ApplicationRef{}, domain.ErrApplicationNotFound
		}
		return app.ApplicationRef{}, fmt.Errorf("resolve firm for application: %w", err)
	}
	return ref, nil
}
