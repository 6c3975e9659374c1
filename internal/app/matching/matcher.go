package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/campusbuddy/internal/app/models"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
	"github.com/yigit/campusbuddy/internal/pkg/metrics"
)

// Directory lists the participants of a campus who are actively opted in to a role.
// Each participant carries its ACTIVE match count for that role.
type Directory interface {
	ListOptedIn(ctx context.Context, campus string, role models.OptInRole) ([]models.Participant, error)
}

// MatchCreator persists an ACTIVE match. Implementations may refuse with
// apperrors.ErrBuddyAtCapacity or apperrors.ErrMenteeAlreadyMatched when a
// concurrent writer got there first.
type MatchCreator interface {
	CreateMatch(ctx context.Context, menteeID, buddyID, campus string) (*models.Match, error)
}

// CampusLocker serializes matching runs per campus. The returned unlock
// function must be called exactly once.
type CampusLocker interface {
	LockCampus(ctx context.Context, campus string) (unlock func(), err error)
}

// Proposal is the best buddy found for one mentee during the proposal phase
type Proposal struct {
	MenteeID string  `json:"menteeId"`
	BuddyID  string  `json:"buddyId"`
	Score    float64 `json:"score"`
}

// Result summarizes one matching run
type Result struct {
	RunID        string          `json:"runId"`
	Campus       string          `json:"campus"`
	CreatedCount int             `json:"createdCount"`
	Matches      []*models.Match `json:"matches"`
	Proposed     int             `json:"proposed"`
	Unmatched    []string        `json:"unmatched"`
	StartedAt    time.Time       `json:"startedAt"`
	Duration     time.Duration   `json:"duration"`
}

// Matcher runs the greedy propose/commit assignment for a campus
type Matcher struct {
	directory Directory
	store     MatchCreator
	locker    CampusLocker
	ceiling   int
	logger    zerolog.Logger
}

// NewMatcher creates a Matcher. ceiling is the maximum number of ACTIVE
// matches per buddy. A nil locker disables run serialization.
func NewMatcher(directory Directory, store MatchCreator, locker CampusLocker, ceiling int, logger zerolog.Logger) *Matcher {
	return &Matcher{
		directory: directory,
		store:     store,
		locker:    locker,
		ceiling:   ceiling,
		logger:    logger.With().Str("component", "matcher").Logger(),
	}
}

// Run matches the unmatched mentees of campus to buddies and persists the
// accepted pairs. Re-running without opt-in changes creates nothing new.
//
// Matches are committed one by one; when a store error aborts the run the
// returned Result still lists the matches created before the failure.
func (m *Matcher) Run(ctx context.Context, campus string) (*Result, error) {
	started := time.Now()
	campus = strings.TrimSpace(campus)
	if campus == "" {
		metrics.RecordRun("invalid", time.Since(started), 0, 0)
		return nil, apperrors.NewInvalidInputError("campus is required")
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Campus:    campus,
		Matches:   []*models.Match{},
		Unmatched: []string{},
		StartedAt: started,
	}
	logger := m.logger.With().Str("campus", campus).Str("run_id", result.RunID).Logger()

	err := m.run(ctx, result, logger)
	result.Duration = time.Since(started)

	metrics.RecordRun(runOutcome(err), result.Duration, result.CreatedCount, len(result.Unmatched))
	if err != nil {
		logger.Error().Err(err).Int("created", result.CreatedCount).Msg("Matching run aborted")
		return result, err
	}

	logger.Info().
		Int("created", result.CreatedCount).
		Int("proposed", result.Proposed).
		Int("unmatched", len(result.Unmatched)).
		Dur("duration", result.Duration).
		Msg("Matching run complete")
	return result, nil
}

func (m *Matcher) run(ctx context.Context, result *Result, logger zerolog.Logger) error {
	if m.locker != nil {
		unlock, err := m.locker.LockCampus(ctx, result.Campus)
		if err != nil {
			return unavailable("acquiring campus lock", err)
		}
		defer unlock()
	}

	logger.Info().Msg("Matching run started")

	mentees, err := m.directory.ListOptedIn(ctx, result.Campus, models.RoleMentee)
	if err != nil {
		return unavailable("loading mentees", err)
	}
	buddies, err := m.directory.ListOptedIn(ctx, result.Campus, models.RoleBuddy)
	if err != nil {
		return unavailable("loading buddies", err)
	}

	eligible := make([]*models.Participant, 0, len(mentees))
	for i := range mentees {
		if mentees[i].ActiveMatches > 0 {
			logger.Debug().Str("mentee_id", mentees[i].ID).Msg("Mentee already matched, skipping")
			continue
		}
		eligible = append(eligible, &mentees[i])
	}

	proposals := m.propose(eligible, buddies, logger)
	result.Proposed = len(proposals)

	// Highest score first; equal scores keep mentee load order.
	sort.SliceStable(proposals, func(i, j int) bool {
		return proposals[i].Score > proposals[j].Score
	})

	matched, err := m.commit(ctx, proposals, buddies, result, logger)

	for _, mentee := range eligible {
		if !matched[mentee.ID] {
			result.Unmatched = append(result.Unmatched, mentee.ID)
		}
	}
	return err
}

// propose picks, for each mentee, the buddy with the strictly greatest
// positive score. Capacity and load penalty use the counts loaded at the
// start of the run; nothing is mutated here.
func (m *Matcher) propose(mentees []*models.Participant, buddies []models.Participant, logger zerolog.Logger) []Proposal {
	proposals := make([]Proposal, 0, len(mentees))

	for _, mentee := range mentees {
		var best *models.Participant
		bestScore := 0.0

		for i := range buddies {
			buddy := &buddies[i]
			if buddy.ActiveMatches >= m.ceiling || buddy.ID == mentee.ID {
				continue
			}
			score := Score(mentee, buddy, buddy.ActiveMatches)
			if best == nil || score > bestScore {
				best = buddy
				bestScore = score
			}
		}

		if best == nil || bestScore <= 0 {
			logger.Debug().Str("mentee_id", mentee.ID).Msg("No viable buddy for mentee")
			continue
		}
		proposals = append(proposals, Proposal{MenteeID: mentee.ID, BuddyID: best.ID, Score: bestScore})
	}

	return proposals
}

// commit walks the sorted proposals, re-checking live capacity before each
// create. It returns the set of mentees that received a match.
func (m *Matcher) commit(ctx context.Context, proposals []Proposal, buddies []models.Participant, result *Result, logger zerolog.Logger) (map[string]bool, error) {
	initial := make(map[string]int, len(buddies))
	for _, b := range buddies {
		initial[b.ID] = b.ActiveMatches
	}
	capacity := NewCapacityTracker(m.ceiling, initial)
	matched := make(map[string]bool, len(proposals))

	for _, p := range proposals {
		if !capacity.HasCapacity(p.BuddyID) {
			metrics.RecordCommitSkip("capacity")
			logger.Info().Str("mentee_id", p.MenteeID).Str("buddy_id", p.BuddyID).Float64("score", p.Score).
				Msg("Buddy filled up earlier in this run, mentee left unmatched")
			continue
		}

		match, err := m.store.CreateMatch(ctx, p.MenteeID, p.BuddyID, result.Campus)
		switch {
		case errors.Is(err, apperrors.ErrBuddyAtCapacity):
			metrics.RecordCommitSkip("store_capacity")
			logger.Info().Str("mentee_id", p.MenteeID).Str("buddy_id", p.BuddyID).
				Msg("Store rejected match, buddy at capacity")
			continue
		case errors.Is(err, apperrors.ErrMenteeAlreadyMatched):
			metrics.RecordCommitSkip("mentee_matched")
			logger.Info().Str("mentee_id", p.MenteeID).
				Msg("Store rejected match, mentee matched concurrently")
			continue
		case errors.Is(err, apperrors.ErrNotFound):
			metrics.RecordCommitSkip("user_missing")
			logger.Info().Str("mentee_id", p.MenteeID).Str("buddy_id", p.BuddyID).
				Msg("Store rejected match, user removed during run")
			continue
		case err != nil:
			return matched, unavailable("creating match", err)
		}

		capacity.Increment(p.BuddyID)
		matched[p.MenteeID] = true
		result.Matches = append(result.Matches, match)
		result.CreatedCount++
		logger.Debug().Str("match_id", match.ID).Str("mentee_id", p.MenteeID).Str("buddy_id", p.BuddyID).
			Float64("score", p.Score).Msg("Match created")
	}

	return matched, nil
}

// unavailable wraps a collaborator failure so callers can match ErrUnavailable.
// Context cancellation passes through unchanged.
func unavailable(op string, err error) error {
	if errors.Is(err, apperrors.ErrUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return apperrors.NewUnavailableError(op, err)
}

func runOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
