package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
	"github.com/yigit/campusbuddy/internal/pkg/dberrors"
	"github.com/yigit/campusbuddy/internal/pkg/metrics"
)

// Settings configures a Breaker
type Settings struct {
	Name         string
	MaxRequests  uint32        // requests allowed through in half-open state
	Interval     time.Duration // closed-state window after which counts reset
	Timeout      time.Duration // open-state wait before probing again
	MinRequests  uint32        // requests in the window before the ratio is considered
	FailureRatio float64       // failure share that opens the circuit
}

// Breaker guards calls to an external store. Infrastructure failures and
// rejected calls come back wrapped in apperrors.ErrUnavailable; domain errors
// (not found, conflict, invalid input, not authorized) pass through untouched
// and do not count against the circuit.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger zerolog.Logger
}

// New creates a Breaker from settings
func New(s Settings, logger zerolog.Logger) *Breaker {
	b := &Breaker{
		name:   s.Name,
		logger: logger.With().Str("component", "breaker").Str("breaker", s.Name).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				b.logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_ratio", ratio).Msg("Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("Circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isDomainError(err) || isCallerCancellation(err)
		},
	})

	return b
}

// Run executes fn through the breaker
func (b *Breaker) Run(fn func() error) error {
	_, err := Do(b, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// State reports the current circuit state
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Do executes fn through b and returns its typed result. A nil breaker runs
// fn directly but still classifies the error.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	if b == nil {
		v, err := fn()
		if err != nil {
			return zero, classify(err)
		}
		return v, nil
	}

	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return zero, apperrors.NewUnavailableError(b.name, err)
		}
		switch {
		case isDomainError(err) || isCallerCancellation(err):
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		case dberrors.IsTimeout(err):
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "timeout").Inc()
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return zero, classify(err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	typed, _ := result.(T)
	return typed, nil
}

// classify wraps infrastructure failures in ErrUnavailable. Statement, lock
// and deadline timeouts are infrastructure failures too.
func classify(err error) error {
	switch {
	case isDomainError(err) || isCallerCancellation(err) || errors.Is(err, apperrors.ErrUnavailable):
		return err
	case dberrors.IsTimeout(err):
		return apperrors.NewUnavailableError("store call timed out", err)
	default:
		return apperrors.NewUnavailableError("store call failed", err)
	}
}

func isDomainError(err error) bool {
	return apperrors.Is(err, apperrors.ErrNotFound,
		apperrors.ErrConflict,
		apperrors.ErrInvalidInput,
		apperrors.ErrNotAuthorized,
	)
}

func isCallerCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
