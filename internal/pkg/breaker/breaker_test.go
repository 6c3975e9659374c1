package breaker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
	"github.com/yigit/campusbuddy/internal/pkg/metrics"
)

func newTestBreaker(name string) *Breaker {
	return New(Settings{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  4,
		FailureRatio: 0.5,
	}, zerolog.Nop())
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	b := newTestBreaker("test-open")
	failure := errors.New("connection reset")

	for i := 0; i < 5; i++ {
		_ = b.Run(func() error { return failure })
	}

	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	called := false
	err := b.Run(func() error {
		called = true
		return nil
	})
	if called {
		t.Error("call went through an open circuit")
	}
	if !errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestBreaker_DomainErrorsDoNotTrip(t *testing.T) {
	b := newTestBreaker("test-domain")

	for i := 0; i < 10; i++ {
		err := b.Run(func() error { return fmt.Errorf("lookup: %w", apperrors.ErrMatchNotFound) })
		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Fatalf("expected not found to pass through, got %v", err)
		}
		if errors.Is(err, apperrors.ErrUnavailable) {
			t.Fatal("domain error was wrapped as unavailable")
		}
	}

	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestBreaker_InfrastructureErrorIsUnavailable(t *testing.T) {
	b := newTestBreaker("test-infra")
	cause := errors.New("dial tcp: connection refused")

	err := b.Run(func() error { return cause })
	if !errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be preserved")
	}
}

func TestDo_ReturnsTypedResult(t *testing.T) {
	b := newTestBreaker("test-typed")

	got, err := Do(b, func() ([]string, error) { return []string{"a", "b"}, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Errorf("got %v", got)
	}
}

func TestDo_NilBreakerStillClassifies(t *testing.T) {
	_, err := Do[int](nil, func() (int, error) { return 0, errors.New("boom") })
	if !errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	_, err = Do[int](nil, func() (int, error) { return 0, context.Canceled })
	if !errors.Is(err, context.Canceled) || errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("cancellation should pass through untouched, got %v", err)
	}
}

func TestBreaker_TimeoutsAreUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"statement timeout", &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"}},
		{"lock timeout", fmt.Errorf("select for update: %w", &pgconn.PgError{Code: "55P03"})},
		{"deadline", fmt.Errorf("acquire: %w", context.DeadlineExceeded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBreaker("test-timeout-" + tt.name)
			counter := metrics.CircuitBreakerRequests.WithLabelValues(b.name, "timeout")
			before := testutil.ToFloat64(counter)

			err := b.Run(func() error { return tt.err })
			if !errors.Is(err, apperrors.ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
			if !errors.Is(err, tt.err) {
				t.Error("expected cause to be preserved")
			}
			if got := err.Error(); !strings.HasPrefix(got, "store call timed out") {
				t.Errorf("message = %q", got)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("timeout count = %v, want 1", got)
			}
		})
	}
}
