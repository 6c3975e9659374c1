package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/campusbuddy/internal/app/models"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
	"github.com/yigit/campusbuddy/internal/pkg/breaker"
	"github.com/yigit/campusbuddy/internal/pkg/validation"
)

// activeCountColumn maps a role to the buddy_matches column that holds it
var activeCountColumn = map[models.OptInRole]string{
	models.RoleMentee: "mentee_id",
	models.RoleBuddy:  "buddy_id",
}

// ParticipantRepository loads matching snapshots of opted-in users
type ParticipantRepository struct {
	db     *pgxpool.Pool
	sb     squirrel.StatementBuilderType
	cb     *breaker.Breaker
	logger zerolog.Logger
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *pgxpool.Pool, cb *breaker.Breaker, logger zerolog.Logger) *ParticipantRepository {
	return &ParticipantRepository{
		db:     db,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cb:     cb,
		logger: logger.With().Str("component", "participant_repository").Logger(),
	}
}

// ListOptedIn returns the users of campus with an active opt-in for role,
// ordered by opt-in time. Each carries its interests, its valid availability
// intervals and its ACTIVE match count in that role.
func (r *ParticipantRepository) ListOptedIn(ctx context.Context, campus string, role models.OptInRole) ([]models.Participant, error) {
	column, ok := activeCountColumn[role]
	if !ok {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("unknown role %q", role))
	}

	return breaker.Do(r.cb, func() ([]models.Participant, error) {
		participants, err := r.listUsers(ctx, campus, role, column)
		if err != nil || len(participants) == 0 {
			return participants, err
		}

		index := make(map[string]*models.Participant, len(participants))
		ids := make([]string, 0, len(participants))
		for i := range participants {
			index[participants[i].ID] = &participants[i]
			ids = append(ids, participants[i].ID)
		}

		if err := r.loadInterests(ctx, ids, index); err != nil {
			return nil, err
		}
		if err := r.loadAvailability(ctx, ids, index); err != nil {
			return nil, err
		}
		return participants, nil
	})
}

func (r *ParticipantRepository) listUsers(ctx context.Context, campus string, role models.OptInRole, column string) ([]models.Participant, error) {
	activeCount := fmt.Sprintf(
		"(SELECT count(*) FROM buddy_matches m WHERE m.%s = u.id AND m.status = '%s') AS active_matches",
		column, models.MatchActive,
	)

	sql, args, err := r.sb.Select("u.id", "u.campus", "u.country_or_region", activeCount).
		From("users u").
		Join("buddy_opt_ins o ON o.user_id = u.id").
		Where(squirrel.Eq{"u.campus": campus, "o.role": string(role), "o.active": true}).
		OrderBy("o.created_at ASC", "u.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list opted-in query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying opted-in users: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		p := models.Participant{Interests: map[string]struct{}{}}
		if err := rows.Scan(&p.ID, &p.Campus, &p.CountryOrRegion, &p.ActiveMatches); err != nil {
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}

	return participants, nil
}

func (r *ParticipantRepository) loadInterests(ctx context.Context, ids []string, index map[string]*models.Participant) error {
	sql, args, err := r.sb.Select("user_id", "interest_key").
		From("user_interests").
		Where(squirrel.Eq{"user_id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build interests query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error querying interests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, key string
		if err := rows.Scan(&userID, &key); err != nil {
			return fmt.Errorf("error scanning interest row: %w", err)
		}
		if p, ok := index[userID]; ok {
			p.Interests[key] = struct{}{}
		}
	}
	return rows.Err()
}

func (r *ParticipantRepository) loadAvailability(ctx context.Context, ids []string, index map[string]*models.Participant) error {
	sql, args, err := r.sb.Select("user_id", "day_of_week", "start_minute", "end_minute").
		From("user_availability").
		Where(squirrel.Eq{"user_id": ids}).
		OrderBy("user_id", "day_of_week", "start_minute").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build availability query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error querying availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var slot models.Availability
		if err := rows.Scan(&userID, &slot.DayOfWeek, &slot.StartMinute, &slot.EndMinute); err != nil {
			return fmt.Errorf("error scanning availability row: %w", err)
		}
		p, ok := index[userID]
		if !ok {
			continue
		}
		if err := validation.Struct(slot); err != nil {
			r.logger.Warn().Err(err).Str("user_id", userID).Msg("Dropping malformed availability interval")
			continue
		}
		p.Availability = append(p.Availability, slot)
	}
	return rows.Err()
}
