package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/yigit/campusbuddy/internal/app/models"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
)

func TestStruct_Availability(t *testing.T) {
	tests := []struct {
		name    string
		slot    models.Availability
		wantErr string
	}{
		{name: "valid", slot: models.Availability{DayOfWeek: 1, StartMinute: 600, EndMinute: 1200}},
		{name: "full day", slot: models.Availability{DayOfWeek: 0, StartMinute: 0, EndMinute: 1440}},
		{name: "day out of range", slot: models.Availability{DayOfWeek: 7, StartMinute: 0, EndMinute: 60}, wantErr: "DayOfWeek must be at most 6"},
		{name: "end before start", slot: models.Availability{DayOfWeek: 2, StartMinute: 600, EndMinute: 600}, wantErr: "EndMinute must be greater than StartMinute"},
		{name: "end past midnight", slot: models.Availability{DayOfWeek: 2, StartMinute: 600, EndMinute: 1500}, wantErr: "EndMinute must be at most 1440"},
		{name: "negative start", slot: models.Availability{DayOfWeek: 2, StartMinute: -5, EndMinute: 60}, wantErr: "StartMinute must be at least 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.slot)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
