package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
)

const campusLockNamespace = "buddy-matching:"

// CampusLockRepository serializes matching runs per campus across processes
// with a PostgreSQL session advisory lock held on a dedicated connection
type CampusLockRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
	logger  zerolog.Logger
}

// NewCampusLockRepository creates a lock repository. timeout bounds the wait
// for a lock held by another run; zero waits as long as ctx allows.
func NewCampusLockRepository(db *pgxpool.Pool, timeout time.Duration, logger zerolog.Logger) *CampusLockRepository {
	return &CampusLockRepository{
		db:      db,
		timeout: timeout,
		logger:  logger.With().Str("component", "campus_lock").Logger(),
	}
}

// LockCampus blocks until the campus lock is held. The returned function
// releases it and returns the connection to the pool.
func (r *CampusLockRepository) LockCampus(ctx context.Context, campus string) (func(), error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailableError("acquiring lock connection", err)
	}

	lockCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	key := campusLockNamespace + campus
	waitStart := time.Now()
	if _, err := conn.Exec(lockCtx, "SELECT pg_advisory_lock(hashtextextended($1, 0))", key); err != nil {
		conn.Release()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.NewUnavailableError(fmt.Sprintf("campus %q is locked by another matching run", campus), err)
	}

	r.logger.Debug().Str("campus", campus).Dur("waited", time.Since(waitStart)).Msg("Campus lock acquired")

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := conn.Exec(releaseCtx, "SELECT pg_advisory_unlock(hashtextextended($1, 0))", key); err != nil {
				// Closing the session drops any advisory lock it holds
				r.logger.Warn().Err(err).Str("campus", campus).Msg("Failed to release campus lock, closing connection")
				_ = conn.Conn().Close(releaseCtx)
			}
			conn.Release()
		})
	}, nil
}

// KeyedLocker is an in-process campus lock for single-instance deployments and tests
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewKeyedLocker creates an empty KeyedLocker
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]chan struct{})}
}

func (l *KeyedLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}

// LockCampus waits for the campus slot or for ctx to end
func (l *KeyedLocker) LockCampus(ctx context.Context, campus string) (func(), error) {
	ch := l.slot(campus)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}
