package matching

import (
	"testing"

	"github.com/yigit/campusbuddy/internal/app/models"
)

func participant(id, country string, interests []string, slots ...models.Availability) *models.Participant {
	return &models.Participant{
		ID:              id,
		Campus:          "Main Campus",
		Interests:       models.NewInterestSet(interests...),
		Availability:    slots,
		CountryOrRegion: country,
	}
}

func slot(day, start, end int) models.Availability {
	return models.Availability{DayOfWeek: day, StartMinute: start, EndMinute: end}
}

func TestScore_ScenarioA(t *testing.T) {
	mentee := participant("mentee-1", "India", []string{"coding", "soccer"}, slot(1, 600, 1200))
	buddy := participant("buddy-1", "USA", []string{"coding", "photography"}, slot(1, 600, 1200))

	if got := Score(mentee, buddy, 0); got != 3 {
		t.Errorf("Score() = %v, want 3", got)
	}
}

func TestScore_Components(t *testing.T) {
	tests := []struct {
		name   string
		mentee *models.Participant
		buddy  *models.Participant
		active int
		want   float64
	}{
		{
			name:   "nothing in common",
			mentee: participant("m", "India", []string{"chess"}, slot(0, 0, 60)),
			buddy:  participant("b", "USA", []string{"music"}, slot(1, 0, 60)),
			want:   0,
		},
		{
			name:   "interests count 2 each and are not capped",
			mentee: participant("m", "India", []string{"a", "b", "c", "d"}),
			buddy:  participant("b", "USA", []string{"a", "b", "c", "d", "e"}),
			want:   8,
		},
		{
			name:   "country match adds exactly one",
			mentee: participant("m", "Kenya", nil),
			buddy:  participant("b", "Kenya", nil),
			want:   1,
		},
		{
			name:   "country comparison is case sensitive",
			mentee: participant("m", "kenya", nil),
			buddy:  participant("b", "Kenya", nil),
			want:   0,
		},
		{
			name:   "load penalty is half per active match",
			mentee: participant("m", "Kenya", []string{"a"}),
			buddy:  participant("b", "Kenya", []string{"a"}),
			active: 3,
			want:   1.5,
		},
		{
			name:   "score may go negative",
			mentee: participant("m", "India", nil),
			buddy:  participant("b", "USA", nil),
			active: 4,
			want:   -2,
		},
		{
			name:   "several overlaps on one day count once",
			mentee: participant("m", "India", nil, slot(2, 60, 120), slot(2, 600, 700), slot(2, 900, 1000)),
			buddy:  participant("b", "USA", nil, slot(2, 0, 1440)),
			want:   1,
		},
		{
			name:   "overlaps on distinct days add up",
			mentee: participant("m", "India", nil, slot(1, 600, 700), slot(3, 600, 700), slot(5, 600, 700)),
			buddy:  participant("b", "USA", nil, slot(1, 650, 800), slot(3, 0, 601), slot(5, 700, 800)),
			want:   2, // day 5 only touches at 700
		},
		{
			name:   "same minutes on different days do not overlap",
			mentee: participant("m", "India", nil, slot(1, 600, 1200)),
			buddy:  participant("b", "USA", nil, slot(2, 600, 1200)),
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.mentee, tt.buddy, tt.active); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_IsPure(t *testing.T) {
	mentee := participant("m", "India", []string{"coding", "soccer"}, slot(1, 600, 1200), slot(4, 0, 60))
	buddy := participant("b", "India", []string{"coding"}, slot(1, 700, 800), slot(4, 30, 90))

	first := Score(mentee, buddy, 2)
	for i := 0; i < 50; i++ {
		if got := Score(mentee, buddy, 2); got != first {
			t.Fatalf("iteration %d: Score() = %v, want %v", i, got, first)
		}
	}
	if first != 2+2+1-1 {
		t.Errorf("Score() = %v, want 4", first)
	}
	if len(mentee.Interests) != 2 || len(buddy.Availability) != 2 {
		t.Error("Score mutated its inputs")
	}
}

func TestCapacityTracker(t *testing.T) {
	tracker := NewCapacityTracker(5, map[string]int{"full": 5, "busy": 4})

	if tracker.HasCapacity("full") {
		t.Error("buddy at the ceiling reported capacity")
	}
	if !tracker.HasCapacity("busy") {
		t.Error("buddy below the ceiling reported no capacity")
	}
	if !tracker.HasCapacity("unknown") {
		t.Error("untracked buddy should start at zero")
	}

	tracker.Increment("busy")
	if tracker.HasCapacity("busy") {
		t.Error("buddy should be full after increment")
	}
	if tracker.Count("busy") != 5 {
		t.Errorf("Count() = %d, want 5", tracker.Count("busy"))
	}
}

func TestNewCapacityTrackerCopiesInitialCounts(t *testing.T) {
	initial := map[string]int{"b": 1}
	tracker := NewCapacityTracker(5, initial)
	tracker.Increment("b")

	if initial["b"] != 1 {
		t.Error("tracker mutated the caller's snapshot")
	}
}
