package repositories

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/campusbuddy/internal/pkg/breaker"
)

// Options tunes the repositories built by NewRepositories
type Options struct {
	MaxMenteesPerBuddy int
	LockTimeout        time.Duration
}

// Repositories holds all the repository instances
type Repositories struct {
	ParticipantRepository *ParticipantRepository
	OptInRepository       *OptInRepository
	MatchRepository       *MatchRepository
	MeetingRepository     *MeetingRepository
	CampusLockRepository  *CampusLockRepository
}

// NewRepositories initializes all repositories. Queries go through cb; the
// campus lock is taken directly on the pool.
func NewRepositories(db *pgxpool.Pool, cb *breaker.Breaker, opts Options, logger zerolog.Logger) *Repositories {
	return &Repositories{
		ParticipantRepository: NewParticipantRepository(db, cb, logger),
		OptInRepository:       NewOptInRepository(db, cb),
		MatchRepository:       NewMatchRepository(db, cb, opts.MaxMenteesPerBuddy, logger),
		MeetingRepository:     NewMeetingRepository(db, cb),
		CampusLockRepository:  NewCampusLockRepository(db, opts.LockTimeout, logger),
	}
}
