package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/campusbuddy/internal/app/models"
	"github.com/yigit/campusbuddy/internal/db"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
	"github.com/yigit/campusbuddy/internal/pkg/breaker"
	"github.com/yigit/campusbuddy/internal/pkg/dberrors"
)

// activeMenteeIndex is the partial unique index allowing one ACTIVE match per mentee
const activeMenteeIndex = "uq_buddy_matches_active_mentee"

// MatchRepository handles buddy_matches rows
type MatchRepository struct {
	db       *pgxpool.Pool
	sb       squirrel.StatementBuilderType
	cb       *breaker.Breaker
	capacity int
	logger   zerolog.Logger
}

// NewMatchRepository creates a new MatchRepository. capacity is the number
// of ACTIVE matches a buddy may hold; CreateMatch refuses beyond it.
func NewMatchRepository(db *pgxpool.Pool, cb *breaker.Breaker, capacity int, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		db:       db,
		sb:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cb:       cb,
		capacity: capacity,
		logger:   logger.With().Str("component", "match_repository").Logger(),
	}
}

// CreateMatch inserts an ACTIVE match. The buddy's user row is locked for
// the duration of the insert so concurrent writers cannot both take the last
// slot. It returns apperrors.ErrBuddyAtCapacity when the buddy is full and
// apperrors.ErrMenteeAlreadyMatched when the mentee already has an ACTIVE match.
func (r *MatchRepository) CreateMatch(ctx context.Context, menteeID, buddyID, campus string) (*models.Match, error) {
	if menteeID == buddyID {
		return nil, apperrors.NewInvalidInputError("a user cannot be their own buddy")
	}

	return breaker.Do(r.cb, func() (*models.Match, error) {
		match := &models.Match{
			ID:       uuid.NewString(),
			MenteeID: menteeID,
			BuddyID:  buddyID,
			Campus:   campus,
			Status:   models.MatchActive,
		}

		err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
			if err := r.lockUser(ctx, tx, buddyID); err != nil {
				return err
			}
			return r.insertIfCapacity(ctx, tx, match)
		})
		if err != nil {
			return nil, err
		}
		return match, nil
	})
}

func (r *MatchRepository) lockUser(ctx context.Context, tx pgx.Tx, userID string) error {
	sql, args, err := r.sb.Select("id").
		From("users").
		Where(squirrel.Eq{"id": userID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build lock user query: %w", err)
	}

	var id string
	if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return mapNoRows(err, apperrors.ErrUserNotFound)
	}
	return nil
}

func (r *MatchRepository) insertIfCapacity(ctx context.Context, tx pgx.Tx, match *models.Match) error {
	// Inner builder keeps '?' placeholders; the outer Dollar format numbers them.
	source := squirrel.Select().
		Column("CAST(? AS uuid)", match.ID).
		Column("CAST(? AS uuid)", match.MenteeID).
		Column("CAST(? AS uuid)", match.BuddyID).
		Column("?", match.Campus).
		Column("?", string(match.Status)).
		Where(squirrel.Expr(
			"(SELECT count(*) FROM buddy_matches WHERE buddy_id = ? AND status = ?) < ?",
			match.BuddyID, string(models.MatchActive), r.capacity,
		))

	sql, args, err := r.sb.Insert("buddy_matches").
		Columns("id", "mentee_id", "buddy_id", "campus", "status").
		Select(source).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create match query: %w", err)
	}

	err = tx.QueryRow(ctx, sql, args...).Scan(&match.CreatedAt, &match.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case dberrors.IsNoRows(err):
		return apperrors.ErrBuddyAtCapacity
	case dberrors.IsDuplicateConstraintError(err, activeMenteeIndex):
		return apperrors.ErrMenteeAlreadyMatched
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrUserNotFound
	default:
		r.logger.Error().Err(err).Str("mentee_id", match.MenteeID).Str("buddy_id", match.BuddyID).
			Msg("Error executing create match query")
		return fmt.Errorf("error creating match: %w", err)
	}
}

// FindActiveMatch returns the ACTIVE match userID takes part in, or nil when
// there is none. A user who is both mentee and buddy gets their mentee match.
func (r *MatchRepository) FindActiveMatch(ctx context.Context, userID string) (*models.Match, error) {
	return breaker.Do(r.cb, func() (*models.Match, error) {
		sql, args, err := r.sb.Select(matchColumns...).
			From("buddy_matches").
			Where(squirrel.Eq{"status": string(models.MatchActive)}).
			Where(squirrel.Or{squirrel.Eq{"mentee_id": userID}, squirrel.Eq{"buddy_id": userID}}).
			OrderByClause("(mentee_id = ?) DESC", userID).
			OrderBy("created_at ASC").
			Limit(1).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build find active match query: %w", err)
		}

		match := &models.Match{}
		if err := r.db.QueryRow(ctx, sql, args...).Scan(matchDest(match)...); err != nil {
			if dberrors.IsNoRows(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("error finding active match: %w", err)
		}
		return match, nil
	})
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (*models.Match, error) {
	if _, err := uuid.Parse(matchID); err != nil {
		return nil, apperrors.ErrMatchNotFound
	}

	return breaker.Do(r.cb, func() (*models.Match, error) {
		sql, args, err := r.sb.Select(matchColumns...).
			From("buddy_matches").
			Where(squirrel.Eq{"id": matchID}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build get match query: %w", err)
		}

		match := &models.Match{}
		if err := r.db.QueryRow(ctx, sql, args...).Scan(matchDest(match)...); err != nil {
			return nil, mapNoRows(err, apperrors.ErrMatchNotFound)
		}
		return match, nil
	})
}

// GetActiveMatchDetails returns userID's ACTIVE match with both profiles, or nil
func (r *MatchRepository) GetActiveMatchDetails(ctx context.Context, userID string) (*models.MatchDetails, error) {
	match, err := r.FindActiveMatch(ctx, userID)
	if err != nil || match == nil {
		return nil, err
	}

	return breaker.Do(r.cb, func() (*models.MatchDetails, error) {
		cols := append(profileColumns("mentee"), profileColumns("buddy")...)
		sql, args, err := r.sb.Select(cols...).
			From("buddy_matches m").
			Join("users mentee ON mentee.id = m.mentee_id").
			Join("users buddy ON buddy.id = m.buddy_id").
			Where(squirrel.Eq{"m.id": match.ID}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build match details query: %w", err)
		}

		details := &models.MatchDetails{Match: *match}
		dest := append(profileDest(&details.Mentee), profileDest(&details.Buddy)...)
		if err := r.db.QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
			return nil, mapNoRows(err, apperrors.ErrMatchNotFound)
		}
		return details, nil
	})
}

// matchSelect joins a match under alias for use in other repositories
func matchSelect(alias string) string {
	return strings.Join(prefixed(alias, matchColumns), ", ")
}
