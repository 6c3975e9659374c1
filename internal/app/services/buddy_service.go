package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/campusbuddy/internal/app/matching"
	"github.com/yigit/campusbuddy/internal/app/models"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
)

// OptInStore persists buddy program opt-ins
type OptInStore interface {
	Upsert(ctx context.Context, userID string, role models.OptInRole) (*models.OptIn, error)
	Deactivate(ctx context.Context, userID string, role models.OptInRole) (*models.OptIn, error)
}

// MatchStore reads matches
type MatchStore interface {
	GetByID(ctx context.Context, matchID string) (*models.Match, error)
	GetActiveMatchDetails(ctx context.Context, userID string) (*models.MatchDetails, error)
}

// MeetingStore persists meetings and their status transitions
type MeetingStore interface {
	Create(ctx context.Context, matchID string, plannedTime time.Time) (*models.Meeting, error)
	GetWithMatch(ctx context.Context, meetingID string) (*models.Meeting, *models.Match, error)
	UpdateStatus(ctx context.Context, meetingID string, status models.MeetingStatus, completedAt time.Time) (*models.Meeting, error)
	ListByMatch(ctx context.Context, matchID string) ([]*models.Meeting, error)
}

// MatchRunner executes a matching run for a campus
type MatchRunner interface {
	Run(ctx context.Context, campus string) (*matching.Result, error)
}

// BuddyService defines the interface for buddy program operations
type BuddyService interface {
	OptIn(ctx context.Context, userID string, role models.OptInRole) (*models.OptIn, error)
	OptOut(ctx context.Context, userID string, role models.OptInRole) (*models.OptIn, error)
	GetCurrentMatch(ctx context.Context, userID string) (*models.MatchDetails, error)
	CreateMeeting(ctx context.Context, userID, matchID string, plannedTime time.Time) (*models.Meeting, error)
	UpdateMeetingStatus(ctx context.Context, userID, meetingID string, status models.MeetingStatus) (*models.Meeting, error)
	ListMeetings(ctx context.Context, userID, matchID string) ([]*models.Meeting, error)
	RunMatching(ctx context.Context, campus string) (*matching.Result, error)
}

// buddyServiceImpl implements BuddyService
type buddyServiceImpl struct {
	optIns     OptInStore
	matches    MatchStore
	meetings   MeetingStore
	runner     MatchRunner
	runTimeout time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// BuddyServiceOption customizes a BuddyService
type BuddyServiceOption func(*buddyServiceImpl)

// WithRunTimeout bounds each matching run, including the wait for the campus lock
func WithRunTimeout(d time.Duration) BuddyServiceOption {
	return func(s *buddyServiceImpl) { s.runTimeout = d }
}

// WithClock replaces the clock used to stamp completed meetings
func WithClock(now func() time.Time) BuddyServiceOption {
	return func(s *buddyServiceImpl) { s.now = now }
}

// NewBuddyService creates a new BuddyService
func NewBuddyService(
	optIns OptInStore,
	matches MatchStore,
	meetings MeetingStore,
	runner MatchRunner,
	logger zerolog.Logger,
	opts ...BuddyServiceOption,
) BuddyService {
	s := &buddyServiceImpl{
		optIns:   optIns,
		matches:  matches,
		meetings: meetings,
		runner:   runner,
		now:      time.Now,
		logger:   logger.With().Str("component", "buddy_service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OptIn creates or reactivates the user's opt-in for role
func (s *buddyServiceImpl) OptIn(ctx context.Context, userID string, role models.OptInRole) (*models.OptIn, error) {
	if err := validateUserAndRole(userID, role); err != nil {
		return nil, err
	}

	optIn, err := s.optIns.Upsert(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Str("role", string(role)).Msg("User opted in")
	return optIn, nil
}

// OptOut deactivates the user's opt-in for role. Existing matches are kept.
func (s *buddyServiceImpl) OptOut(ctx context.Context, userID string, role models.OptInRole) (*models.OptIn, error) {
	if err := validateUserAndRole(userID, role); err != nil {
		return nil, err
	}

	optIn, err := s.optIns.Deactivate(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", userID).Str("role", string(role)).Msg("User opted out")
	return optIn, nil
}

// GetCurrentMatch returns the caller's ACTIVE match with both profiles, or nil
func (s *buddyServiceImpl) GetCurrentMatch(ctx context.Context, userID string) (*models.MatchDetails, error) {
	if err := validateID("user ID", userID); err != nil {
		return nil, err
	}
	return s.matches.GetActiveMatchDetails(ctx, userID)
}

// CreateMeeting schedules a meeting on a match the caller takes part in
func (s *buddyServiceImpl) CreateMeeting(ctx context.Context, userID, matchID string, plannedTime time.Time) (*models.Meeting, error) {
	if err := validateID("user ID", userID); err != nil {
		return nil, err
	}
	if plannedTime.IsZero() {
		return nil, apperrors.NewInvalidInputError("plannedTime is required")
	}

	if _, err := s.authorizedMatch(ctx, userID, matchID); err != nil {
		return nil, err
	}

	meeting, err := s.meetings.Create(ctx, matchID, plannedTime)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("match_id", matchID).Str("meeting_id", meeting.ID).Time("planned_time", plannedTime).Msg("Meeting scheduled")
	return meeting, nil
}

// UpdateMeetingStatus changes a meeting's status. COMPLETED also records the
// completion time on the parent match.
func (s *buddyServiceImpl) UpdateMeetingStatus(ctx context.Context, userID, meetingID string, status models.MeetingStatus) (*models.Meeting, error) {
	if err := validateID("user ID", userID); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewInvalidInputError("status must be one of SCHEDULED, COMPLETED, CANCELLED")
	}

	_, match, err := s.meetings.GetWithMatch(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, apperrors.NewNotAuthorizedError("not a participant of this meeting")
	}

	updated, err := s.meetings.UpdateStatus(ctx, meetingID, status, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("meeting_id", meetingID).Str("match_id", match.ID).Str("status", string(status)).Msg("Meeting status updated")
	return updated, nil
}

// ListMeetings returns the meetings of a match the caller takes part in
func (s *buddyServiceImpl) ListMeetings(ctx context.Context, userID, matchID string) ([]*models.Meeting, error) {
	if err := validateID("user ID", userID); err != nil {
		return nil, err
	}
	if _, err := s.authorizedMatch(ctx, userID, matchID); err != nil {
		return nil, err
	}
	return s.meetings.ListByMatch(ctx, matchID)
}

// RunMatching runs the matcher for campus under the configured run timeout
func (s *buddyServiceImpl) RunMatching(ctx context.Context, campus string) (*matching.Result, error) {
	if strings.TrimSpace(campus) == "" {
		return nil, apperrors.NewInvalidInputError("campus is required")
	}

	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	return s.runner.Run(ctx, campus)
}

func (s *buddyServiceImpl) authorizedMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, apperrors.NewNotAuthorizedError("not a participant of this match")
	}
	return match, nil
}

func validateUserAndRole(userID string, role models.OptInRole) error {
	if err := validateID("user ID", userID); err != nil {
		return err
	}
	if !role.Valid() {
		return apperrors.NewInvalidInputError("type must be MENTEE or BUDDY")
	}
	return nil
}

func validateID(name, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewInvalidInputError(name + " must be a UUID")
	}
	return nil
}
