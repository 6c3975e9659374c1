package dberrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "uq_buddy_matches_active_mentee"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "buddy_opt_ins_user_id_fkey"}
	lock := &pgconn.PgError{Code: "55P03"}

	tests := []struct {
		name      string
		err       error
		fk        bool
		noRows    bool
		timeout   bool
		duplicate bool
	}{
		{name: "unique violation", err: unique, duplicate: true},
		{name: "wrapped unique violation", err: fmt.Errorf("insert: %w", unique), duplicate: true},
		{name: "foreign key", err: fk, fk: true},
		{name: "no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), noRows: true},
		{name: "lock timeout", err: lock, timeout: true},
		{name: "statement timeout", err: fmt.Errorf("query: %w", &pgconn.PgError{Code: "57014"}), timeout: true},
		{name: "expired context", err: fmt.Errorf("acquire: %w", context.DeadlineExceeded), timeout: true},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsForeignKeyViolation(tt.err); got != tt.fk {
				t.Errorf("IsForeignKeyViolation() = %v, want %v", got, tt.fk)
			}
			if got := IsNoRows(tt.err); got != tt.noRows {
				t.Errorf("IsNoRows() = %v, want %v", got, tt.noRows)
			}
			if got := IsTimeout(tt.err); got != tt.timeout {
				t.Errorf("IsTimeout() = %v, want %v", got, tt.timeout)
			}
			if got := IsDuplicateConstraintError(tt.err, "uq_buddy_matches_active_mentee"); got != tt.duplicate {
				t.Errorf("IsDuplicateConstraintError() = %v, want %v", got, tt.duplicate)
			}
		})
	}
}

func TestIsDuplicateConstraintError_OtherConstraint(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "uq_buddy_opt_ins_user_role"}
	if IsDuplicateConstraintError(err, "uq_buddy_matches_active_mentee") {
		t.Error("matched a different constraint")
	}
}
