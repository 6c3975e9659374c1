package models

import "time"

// OptInRole is the side of the buddy program a user opted into
type OptInRole string

const (
	RoleMentee OptInRole = "MENTEE"
	RoleBuddy  OptInRole = "BUDDY"
)

// Valid reports whether r is a known role
func (r OptInRole) Valid() bool {
	return r == RoleMentee || r == RoleBuddy
}

// MinutesPerDay bounds availability interval endpoints
const MinutesPerDay = 1440

// Availability is a weekly interval [StartMinute, EndMinute) on DayOfWeek (0 = Sunday)
type Availability struct {
	DayOfWeek   int `json:"dayOfWeek" db:"day_of_week" validate:"min=0,max=6"`
	StartMinute int `json:"startMinute" db:"start_minute" validate:"min=0,max=1439"`
	EndMinute   int `json:"endMinute" db:"end_minute" validate:"gtfield=StartMinute,max=1440"`
}

// Overlaps reports whether both intervals fall on the same day and share at least one minute
func (a Availability) Overlaps(b Availability) bool {
	if a.DayOfWeek != b.DayOfWeek {
		return false
	}
	return max(a.StartMinute, b.StartMinute) < min(a.EndMinute, b.EndMinute)
}

// Participant is a read-only snapshot of a user taken for one matching run.
// ActiveMatches counts ACTIVE matches in the role the participant was loaded for.
type Participant struct {
	ID              string              `json:"id"`
	Campus          string              `json:"campus"`
	Interests       map[string]struct{} `json:"-"`
	Availability    []Availability      `json:"availability"`
	CountryOrRegion string              `json:"countryOrRegion"`
	ActiveMatches   int                 `json:"activeMatches"`
}

// NewInterestSet builds an interest set from tag keys, ignoring duplicates
func NewInterestSet(tags ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

// UserProfile is the public part of a user returned alongside a match
type UserProfile struct {
	ID              string    `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	Name            string    `json:"name" db:"name"`
	Campus          string    `json:"campus" db:"campus"`
	CountryOrRegion string    `json:"countryOrRegion" db:"country_or_region"`
	DegreeLevel     *string   `json:"degreeLevel,omitempty" db:"degree_level"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}
