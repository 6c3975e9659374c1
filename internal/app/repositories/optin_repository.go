package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusbuddy/internal/app/models"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
	"github.com/yigit/campusbuddy/internal/pkg/breaker"
	"github.com/yigit/campusbuddy/internal/pkg/dberrors"
)

// OptInRepository handles buddy_opt_ins rows
type OptInRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
	cb *breaker.Breaker
}

// NewOptInRepository creates a new OptInRepository
func NewOptInRepository(db *pgxpool.Pool, cb *breaker.Breaker) *OptInRepository {
	return &OptInRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cb: cb,
	}
}

// Upsert creates the (userID, role) opt-in or reactivates an existing one
func (r *OptInRepository) Upsert(ctx context.Context, userID string, role models.OptInRole) (*models.OptIn, error) {
	return breaker.Do(r.cb, func() (*models.OptIn, error) {
		sql, args, err := r.sb.Insert("buddy_opt_ins").
			Columns("id", "user_id", "role", "active").
			Values(uuid.NewString(), userID, string(role), true).
			Suffix("ON CONFLICT (user_id, role) DO UPDATE SET active = TRUE, updated_at = now() RETURNING " +
				strings.Join(optInColumns, ", ")).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build upsert opt-in query: %w", err)
		}

		optIn := &models.OptIn{}
		if err := r.db.QueryRow(ctx, sql, args...).Scan(optInDest(optIn)...); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, fmt.Errorf("error upserting opt-in: %w", err)
		}
		return optIn, nil
	})
}

// Deactivate marks the (userID, role) opt-in inactive. It fails with
// apperrors.ErrOptInNotFound when no record exists.
func (r *OptInRepository) Deactivate(ctx context.Context, userID string, role models.OptInRole) (*models.OptIn, error) {
	return breaker.Do(r.cb, func() (*models.OptIn, error) {
		sql, args, err := r.sb.Update("buddy_opt_ins").
			Set("active", false).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"user_id": userID, "role": string(role)}).
			Suffix("RETURNING " + strings.Join(optInColumns, ", ")).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build deactivate opt-in query: %w", err)
		}

		optIn := &models.OptIn{}
		if err := r.db.QueryRow(ctx, sql, args...).Scan(optInDest(optIn)...); err != nil {
			return nil, mapNoRows(err, apperrors.ErrOptInNotFound)
		}
		return optIn, nil
	})
}
