package models

import "testing"

func TestAvailabilityOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Availability
		want bool
	}{
		{"identical", Availability{1, 600, 1200}, Availability{1, 600, 1200}, true},
		{"partial", Availability{1, 600, 720}, Availability{1, 700, 900}, true},
		{"touching end to start", Availability{1, 600, 720}, Availability{1, 720, 900}, false},
		{"different day", Availability{1, 600, 1200}, Availability{2, 600, 1200}, false},
		{"contained", Availability{3, 0, 1440}, Availability{3, 10, 11}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps() is not symmetric")
			}
		})
	}
}

func TestMatchHasParticipant(t *testing.T) {
	m := &Match{MenteeID: "m1", BuddyID: "b1"}
	if !m.HasParticipant("m1") || !m.HasParticipant("b1") {
		t.Error("expected both sides to be participants")
	}
	if m.HasParticipant("x") {
		t.Error("stranger reported as participant")
	}
}

func TestEnumValidity(t *testing.T) {
	if !RoleMentee.Valid() || !RoleBuddy.Valid() || OptInRole("STAFF").Valid() {
		t.Error("unexpected role validity")
	}
	if !MeetingCompleted.Valid() || MeetingStatus("DONE").Valid() {
		t.Error("unexpected meeting status validity")
	}
}
