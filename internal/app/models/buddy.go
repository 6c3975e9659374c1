package models

import "time"

// OptIn records that a user takes part in the buddy program in one role.
// There is at most one row per (UserID, Role).
type OptIn struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Role      OptInRole `json:"type" db:"role"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// MatchStatus is the lifecycle state of a buddy match
type MatchStatus string

const (
	MatchActive    MatchStatus = "ACTIVE"
	MatchCompleted MatchStatus = "COMPLETED"
	MatchFailed    MatchStatus = "FAILED"
)

// Match pairs one mentee with one buddy on a campus
type Match struct {
	ID            string      `json:"id" db:"id"`
	MenteeID      string      `json:"menteeId" db:"mentee_id"`
	BuddyID       string      `json:"buddyId" db:"buddy_id"`
	Campus        string      `json:"campus" db:"campus"`
	Status        MatchStatus `json:"status" db:"status"`
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time   `json:"updatedAt" db:"updated_at"`
	LastMeetingAt *time.Time  `json:"lastMeetingAt" db:"last_meeting_at"`
}

// HasParticipant reports whether userID is the mentee or the buddy of m
func (m *Match) HasParticipant(userID string) bool {
	return m.MenteeID == userID || m.BuddyID == userID
}

// MatchDetails is a match together with both participants' profiles
type MatchDetails struct {
	Match
	Mentee UserProfile `json:"mentee"`
	Buddy  UserProfile `json:"buddy"`
}

// MeetingStatus is the lifecycle state of a buddy meeting
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "SCHEDULED"
	MeetingCompleted MeetingStatus = "COMPLETED"
	MeetingCancelled MeetingStatus = "CANCELLED"
)

// Valid reports whether s is a known meeting status
func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingScheduled, MeetingCompleted, MeetingCancelled:
		return true
	}
	return false
}

// Meeting is a planned get-together belonging to a match
type Meeting struct {
	ID          string        `json:"id" db:"id"`
	MatchID     string        `json:"matchId" db:"match_id"`
	PlannedTime time.Time     `json:"plannedTime" db:"planned_time"`
	Status      MeetingStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}
