package cli

import (
	"sort"

	"github.com/sqlsaturday/satops/internal/schedule"
)

// sortDays orders conference days by date. Days with an unparseable date keep
// their feed order after the dated ones.
func sortDays(days []schedule.Day) {
	sort.SliceStable(days, func(i, j int) bool {
		return compareByDate(&days[i], &days[j])
	})
}

// compareByDate compares two days by their date
// Returns true if day i should come before day j
func compareByDate(i, j *schedule.Day) bool {
	dateI := i.ParseDate()
	dateJ := j.ParseDate()

	// If both dates are valid, compare them
	if !dateI.IsZero() && !dateJ.IsZero() {
		return dateI.Before(dateJ)
	}

	// If only one date is valid, put the valid one first
	return !dateI.IsZero() && dateJ.IsZero()
}
