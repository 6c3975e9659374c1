package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusbuddy/internal/app/models"
	"github.com/yigit/campusbuddy/internal/db"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
	"github.com/yigit/campusbuddy/internal/pkg/breaker"
	"github.com/yigit/campusbuddy/internal/pkg/dberrors"
)

// MeetingRepository handles buddy_meetings rows
type MeetingRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
	cb *breaker.Breaker
}

// NewMeetingRepository creates a new MeetingRepository
func NewMeetingRepository(db *pgxpool.Pool, cb *breaker.Breaker) *MeetingRepository {
	return &MeetingRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cb: cb,
	}
}

// Create inserts a SCHEDULED meeting for matchID
func (r *MeetingRepository) Create(ctx context.Context, matchID string, plannedTime time.Time) (*models.Meeting, error) {
	return breaker.Do(r.cb, func() (*models.Meeting, error) {
		meeting := &models.Meeting{
			ID:          uuid.NewString(),
			MatchID:     matchID,
			PlannedTime: plannedTime,
			Status:      models.MeetingScheduled,
		}

		sql, args, err := r.sb.Insert("buddy_meetings").
			Columns("id", "match_id", "planned_time", "status").
			Values(meeting.ID, meeting.MatchID, meeting.PlannedTime, string(meeting.Status)).
			Suffix("RETURNING created_at, updated_at").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build create meeting query: %w", err)
		}

		if err := r.db.QueryRow(ctx, sql, args...).Scan(&meeting.CreatedAt, &meeting.UpdatedAt); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return nil, apperrors.ErrMatchNotFound
			}
			return nil, fmt.Errorf("error creating meeting: %w", err)
		}
		return meeting, nil
	})
}

// GetWithMatch retrieves a meeting together with its parent match
func (r *MeetingRepository) GetWithMatch(ctx context.Context, meetingID string) (*models.Meeting, *models.Match, error) {
	if _, err := uuid.Parse(meetingID); err != nil {
		return nil, nil, apperrors.ErrMeetingNotFound
	}

	type pair struct {
		meeting *models.Meeting
		match   *models.Match
	}
	res, err := breaker.Do(r.cb, func() (pair, error) {
		sql, args, err := r.sb.Select(prefixed("mt", meetingColumns)...).
			Column(matchSelect("m")).
			From("buddy_meetings mt").
			Join("buddy_matches m ON m.id = mt.match_id").
			Where(squirrel.Eq{"mt.id": meetingID}).
			ToSql()
		if err != nil {
			return pair{}, fmt.Errorf("failed to build get meeting query: %w", err)
		}

		p := pair{meeting: &models.Meeting{}, match: &models.Match{}}
		dest := append(meetingDest(p.meeting), matchDest(p.match)...)
		if err := r.db.QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
			return pair{}, mapNoRows(err, apperrors.ErrMeetingNotFound)
		}
		return p, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return res.meeting, res.match, nil
}

// UpdateStatus sets a meeting's status. Moving to COMPLETED also stamps the
// parent match's last_meeting_at with completedAt in the same transaction;
// no other transition touches the match.
func (r *MeetingRepository) UpdateStatus(ctx context.Context, meetingID string, status models.MeetingStatus, completedAt time.Time) (*models.Meeting, error) {
	return breaker.Do(r.cb, func() (*models.Meeting, error) {
		meeting := &models.Meeting{}

		err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
			sql, args, err := r.sb.Update("buddy_meetings").
				Set("status", string(status)).
				Set("updated_at", squirrel.Expr("now()")).
				Where(squirrel.Eq{"id": meetingID}).
				Suffix("RETURNING " + strings.Join(meetingColumns, ", ")).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build update meeting query: %w", err)
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(meetingDest(meeting)...); err != nil {
				return mapNoRows(err, apperrors.ErrMeetingNotFound)
			}

			if status != models.MeetingCompleted {
				return nil
			}

			sql, args, err = r.sb.Update("buddy_matches").
				Set("last_meeting_at", completedAt).
				Set("updated_at", squirrel.Expr("now()")).
				Where(squirrel.Eq{"id": meeting.MatchID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build touch match query: %w", err)
			}
			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return fmt.Errorf("error updating match last meeting time: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return apperrors.ErrMatchNotFound
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return meeting, nil
	})
}

// ListByMatch returns the meetings of a match ordered by planned time
func (r *MeetingRepository) ListByMatch(ctx context.Context, matchID string) ([]*models.Meeting, error) {
	return breaker.Do(r.cb, func() ([]*models.Meeting, error) {
		sql, args, err := r.sb.Select(meetingColumns...).
			From("buddy_meetings").
			Where(squirrel.Eq{"match_id": matchID}).
			OrderBy("planned_time ASC").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build list meetings query: %w", err)
		}

		rows, err := r.db.Query(ctx, sql, args...)
		if err != nil {
			return nil, fmt.Errorf("error querying meetings: %w", err)
		}
		defer rows.Close()

		meetings := []*models.Meeting{}
		for rows.Next() {
			m := &models.Meeting{}
			if err := rows.Scan(meetingDest(m)...); err != nil {
				return nil, fmt.Errorf("error scanning meeting row: %w", err)
			}
			meetings = append(meetings, m)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating meeting rows: %w", err)
		}
		return meetings, nil
	})
}
