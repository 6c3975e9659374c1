package dto

import (
	"time"

	"github.com/yigit/campusbuddy/internal/app/models"
)

// OptInRequest selects the buddy program role to join or leave
type OptInRequest struct {
	Type models.OptInRole `json:"type" binding:"required,oneof=MENTEE BUDDY"`
}

// CreateMeetingRequest schedules a meeting on a match
type CreateMeetingRequest struct {
	PlannedTime time.Time `json:"plannedTime" binding:"required"`
}

// UpdateMeetingStatusRequest moves a meeting to a new status
type UpdateMeetingStatusRequest struct {
	Status models.MeetingStatus `json:"status" binding:"required,oneof=SCHEDULED COMPLETED CANCELLED"`
}

// RunMatchingQuery carries the campus of an administrator-triggered run
type RunMatchingQuery struct {
	Campus string `form:"campus" binding:"required"`
}

// MatchRunResponse summarizes a matching run
type MatchRunResponse struct {
	RunID        string          `json:"runId"`
	Campus       string          `json:"campus"`
	CreatedCount int             `json:"createdCount"`
	Matches      []*models.Match `json:"matches"`
	Proposed     int             `json:"proposed"`
	Unmatched    []string        `json:"unmatched"`
	DurationMS   int64           `json:"durationMs"`
}
