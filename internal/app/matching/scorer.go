package matching

import "github.com/yigit/campusbuddy/internal/app/models"

// Score weights
const (
	sharedInterestWeight = 2.0
	sharedDayWeight      = 1.0
	sameCountryWeight    = 1.0
	loadPenaltyPerMatch  = 0.5
)

// Score computes the affinity between a mentee and a buddy who already has
// buddyActiveCount ACTIVE matches. A score <= 0 means the pair is not viable.
//
//	+2 per shared interest tag
//	+1 per weekday with at least one overlapping availability interval
//	+1 when country/region is identical
//	-0.5 per active match the buddy already carries
func Score(mentee, buddy *models.Participant, buddyActiveCount int) float64 {
	score := 0.0

	for tag := range mentee.Interests {
		if _, ok := buddy.Interests[tag]; ok {
			score += sharedInterestWeight
		}
	}

	score += float64(overlappingDays(mentee.Availability, buddy.Availability)) * sharedDayWeight

	if mentee.CountryOrRegion == buddy.CountryOrRegion {
		score += sameCountryWeight
	}

	score -= loadPenaltyPerMatch * float64(buddyActiveCount)

	return score
}

// overlappingDays counts distinct weekdays on which some interval of a
// overlaps some interval of b
func overlappingDays(a, b []models.Availability) int {
	var seen [7]bool
	days := 0
	for _, x := range a {
		if x.DayOfWeek < 0 || x.DayOfWeek > 6 || seen[x.DayOfWeek] {
			continue
		}
		for _, y := range b {
			if x.Overlaps(y) {
				seen[x.DayOfWeek] = true
				days++
				break
			}
		}
	}
	return days
}
