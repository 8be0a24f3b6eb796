package service

import (
	"fmt"

	"github.com/isa-florenville/focustime-api/internal/models"
)

// SeatLabel is the presentational bucket for a remaining-seat count. Labels
// never influence gating; only the remaining count does.
type SeatLabel string

const (
	SeatsMany SeatLabel = "MANY"
	SeatsFew  SeatLabel = "FEW"
	SeatsFull SeatLabel = "FULL"
)

// RemainingSeats returns how many seats are left for an activity in a
// period. Shared-pool activities count occupancy recorded under either of
// their sub-degrees against the joint capacity. Never negative, even when a
// race oversubscribed the group.
func RemainingSeats(activity models.Activity, period models.Period, occupancy models.Occupancy) int {
	taken := 0
	for _, degree := range activity.Scope.SubDegrees() {
		taken += occupancy.Count(models.OccupancyKey{Choice: activity.Name, Period: period, Degree: degree})
	}
	remaining := activity.Capacity - taken
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AlreadyRegisteredPeriod reports whether any existing record claims time
// in the target period. A combined registration blocks both single slots,
// and either single slot blocks the combined one.
func AlreadyRegisteredPeriod(existing []models.Registration, period models.Period) bool {
	for _, record := range existing {
		if record.Period.Overlaps(period) {
			return true
		}
	}
	return false
}

// IsRegistrable reports whether a student may take a seat: the group has
// room and no existing registration covers the period.
func IsRegistrable(activity models.Activity, period models.Period, occupancy models.Occupancy, existing []models.Registration) bool {
	if RemainingSeats(activity, period, occupancy) <= 0 {
		return false
	}
	return !AlreadyRegisteredPeriod(existing, period)
}

// LabelFor buckets a remaining-seat count for display.
func LabelFor(remaining int) SeatLabel {
	switch {
	case remaining > 3:
		return SeatsMany
	case remaining > 0:
		return SeatsFew
	default:
		return SeatsFull
	}
}

// SeatMessage renders the seat availability line shown on a form.
func SeatMessage(remaining int) string {
	switch {
	case remaining > 3:
		return fmt.Sprintf("Il reste %d places", remaining)
	case remaining > 1:
		return fmt.Sprintf("Il ne reste plus que %d places", remaining)
	case remaining == 1:
		return "Il ne reste plus que 1 place"
	default:
		return "Il n'y a plus de place"
	}
}

// VisibleActivities filters a catalog down to what a student of the given
// degree may see. Unresolved students and staff see no activities.
func VisibleActivities(degree models.Degree, activities []models.Activity) []models.Activity {
	var visible []models.Activity
	for _, activity := range activities {
		if activity.Scope.Covers(degree) {
			visible = append(visible, activity)
		}
	}
	return visible
}

// FindActivity locates a catalog activity by name among those visible to
// the degree. Returns false when the activity does not exist or the degree
// is out of its scope.
func FindActivity(degree models.Degree, activities []models.Activity, name string) (models.Activity, bool) {
	for _, activity := range activities {
		if activity.Name == name && activity.Scope.Covers(degree) {
			return activity, true
		}
	}
	return models.Activity{}, false
}
