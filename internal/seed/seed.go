package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/campusbuddy/internal/app/models"
	"github.com/yigit/campusbuddy/internal/db"
)

// DemoCampus is the campus populated by CreateDefaultData
const DemoCampus = "Main Campus"

// DemoUser is one seeded user with the data the matcher reads
type DemoUser struct {
	ID           string
	Email        string
	Name         string
	Country      string
	DegreeLevel  *string
	Interests    []string
	Availability []models.Availability
	OptInAs      models.OptInRole // empty: no opt-in
}

func strPtr(s string) *string { return &s }

// DemoUsers returns the demo campus: an international student, a buddy who
// shares two interests and two weekdays with them, and a staff member
func DemoUsers() []DemoUser {
	weekdays := []models.Availability{
		{DayOfWeek: 1, StartMinute: 600, EndMinute: 1200},
		{DayOfWeek: 3, StartMinute: 600, EndMinute: 1200},
	}
	return []DemoUser{
		{
			ID:           "6f1c2a4e-0d3b-4b8e-9a51-2f7d8c1e0a01",
			Email:        "student@example.com",
			Name:         "John Student",
			Country:      "India",
			DegreeLevel:  strPtr("Undergraduate"),
			Interests:    []string{"soccer", "movies_kdrama", "coding_interview"},
			Availability: weekdays,
			OptInAs:      models.RoleMentee,
		},
		{
			ID:           "6f1c2a4e-0d3b-4b8e-9a51-2f7d8c1e0a02",
			Email:        "buddy@example.com",
			Name:         "Jane Buddy",
			Country:      "USA",
			DegreeLevel:  strPtr("Graduate"),
			Interests:    []string{"soccer", "movies_kdrama"},
			Availability: weekdays,
			OptInAs:      models.RoleBuddy,
		},
		{
			ID:      "6f1c2a4e-0d3b-4b8e-9a51-2f7d8c1e0a03",
			Email:   "staff@example.com",
			Name:    "Admin Staff",
			Country: "USA",
		},
	}
}

// CreateDefaultData inserts the demo campus. Users that already exist are
// left untouched, so running it again is harmless.
func CreateDefaultData(ctx context.Context, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	lgr.Info().Str("campus", DemoCampus).Msg("Checking/Creating demo campus data...")

	var finalErr error
	created := 0
	for _, u := range DemoUsers() {
		inserted, err := createUser(ctx, pool, sb, u)
		if err != nil {
			lgr.Error().Err(err).Str("email", u.Email).Msg("Error creating demo user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if inserted {
			created++
		}
	}

	lgr.Info().Int("created", created).Msg("Demo campus data ready")
	return finalErr
}

func createUser(ctx context.Context, pool *pgxpool.Pool, sb squirrel.StatementBuilderType, u DemoUser) (bool, error) {
	inserted := false
	err := db.WithTransaction(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := sb.Insert("users").
			Columns("id", "email", "name", "campus", "country_or_region", "degree_level").
			Values(u.ID, u.Email, u.Name, DemoCampus, u.Country, u.DegreeLevel).
			Suffix("ON CONFLICT (email) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert user query: %w", err)
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error inserting user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		inserted = true

		if len(u.Interests) > 0 {
			q := sb.Insert("user_interests").Columns("user_id", "interest_key")
			for _, key := range u.Interests {
				q = q.Values(u.ID, key)
			}
			if err := exec(ctx, tx, q); err != nil {
				return fmt.Errorf("error inserting interests: %w", err)
			}
		}

		if len(u.Availability) > 0 {
			q := sb.Insert("user_availability").Columns("user_id", "day_of_week", "start_minute", "end_minute")
			for _, a := range u.Availability {
				q = q.Values(u.ID, a.DayOfWeek, a.StartMinute, a.EndMinute)
			}
			if err := exec(ctx, tx, q); err != nil {
				return fmt.Errorf("error inserting availability: %w", err)
			}
		}

		if u.OptInAs != "" {
			q := sb.Insert("buddy_opt_ins").
				Columns("id", "user_id", "role", "active").
				Values(optInID(u.ID, u.OptInAs), u.ID, string(u.OptInAs), true).
				Suffix("ON CONFLICT (user_id, role) DO NOTHING")
			if err := exec(ctx, tx, q); err != nil {
				return fmt.Errorf("error inserting opt-in: %w", err)
			}
		}
		return nil
	})
	return inserted, err
}

func exec(ctx context.Context, tx pgx.Tx, q squirrel.InsertBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

// optInID derives a stable opt-in ID from the demo user and role
func optInID(userID string, role models.OptInRole) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(userID+"/"+string(role))).String()
}
