package repositories

import (
	"fmt"

	"github.com/yigit/campusbuddy/internal/app/models"
	"github.com/yigit/campusbuddy/internal/pkg/dberrors"
)

var (
	matchColumns   = []string{"id", "mentee_id", "buddy_id", "campus", "status", "created_at", "updated_at", "last_meeting_at"}
	meetingColumns = []string{"id", "match_id", "planned_time", "status", "created_at", "updated_at"}
	optInColumns   = []string{"id", "user_id", "role", "active", "created_at", "updated_at"}
)

// profileColumns lists the users columns of a UserProfile under alias
func profileColumns(alias string) []string {
	return prefixed(alias, []string{"id", "email", "name", "campus", "country_or_region", "degree_level", "created_at"})
}

func profileDest(p *models.UserProfile) []interface{} {
	return []interface{}{&p.ID, &p.Email, &p.Name, &p.Campus, &p.CountryOrRegion, &p.DegreeLevel, &p.CreatedAt}
}

func matchDest(m *models.Match) []interface{} {
	return []interface{}{&m.ID, &m.MenteeID, &m.BuddyID, &m.Campus, &m.Status, &m.CreatedAt, &m.UpdatedAt, &m.LastMeetingAt}
}

func prefixed(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

// mapNoRows turns pgx.ErrNoRows into notFound and wraps anything else
func mapNoRows(err, notFound error) error {
	if dberrors.IsNoRows(err) {
		return notFound
	}
	return fmt.Errorf("query failed: %w", err)
}

func meetingDest(m *models.Meeting) []interface{} {
	return []interface{}{&m.ID, &m.MatchID, &m.PlannedTime, &m.Status, &m.CreatedAt, &m.UpdatedAt}
}

func optInDest(o *models.OptIn) []interface{} {
	return []interface{}{&o.ID, &o.UserID, &o.Role, &o.Active, &o.CreatedAt, &o.UpdatedAt}
}
