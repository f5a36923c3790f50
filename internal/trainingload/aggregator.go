package trainingload

import (
	"time"

	"github.com/biopeak/analytics/internal/activity"
)

// defaultMaxHeartRate is assumed when an activity carries no max HR reading.
const defaultMaxHeartRate = 220

// Windows holds rolling training load sums relative to a reference date.
// AvgMonthlyLoad is the 30 day sum scaled down to a week equivalent.
type Windows struct {
	CurrentWeekLoad  float64 `json:"currentWeekLoad"`
	PreviousWeekLoad float64 `json:"previousWeekLoad"`
	MonthLoad        float64 `json:"monthLoad"`
	AvgMonthlyLoad   float64 `json:"avgMonthlyLoad"`
}

// ActivityLoad computes the heuristic load of one activity:
// duration in hours, scaled by heart rate intensity, activity type
// and calories burned. Missing heart rate data falls back to the
// lowest intensity tier instead of failing.
func ActivityLoad(a activity.Activity) float64 {
	if a.DurationSeconds <= 0 {
		return 0
	}

	durationHours := float64(a.DurationSeconds) / 3600

	intensityFactor := 1.0
	maxHR := a.MaxHeartRate
	if maxHR <= 0 {
		maxHR = defaultMaxHeartRate
	}
	if a.AvgHeartRate > 0 {
		switch ratio := a.AvgHeartRate / maxHR; {
		case ratio >= 0.75:
			intensityFactor = 2.5
		case ratio >= 0.65:
			intensityFactor = 2.0
		case ratio >= 0.55:
			intensityFactor = 1.5
		}
	}

	typeFactor := 1.0
	switch a.Type {
	case activity.TypeRun:
		typeFactor = 1.2
	case activity.TypeSwim:
		typeFactor = 1.3
	}

	return durationHours * intensityFactor * typeFactor * (a.Calories / 100)
}

// Aggregate partitions activities into rolling windows relative to now
// (last 7 days, days 8 to 14, last 30 days) and sums their loads.
func Aggregate(activities []activity.Activity, now time.Time) Windows {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)
	monthAgo := now.AddDate(0, 0, -30)

	var windows Windows
	for _, a := range activities {
		if a.StartedAt.After(now) || a.StartedAt.Before(monthAgo) {
			continue
		}

		load := ActivityLoad(a)
		windows.MonthLoad += load
		if a.StartedAt.After(weekAgo) {
			windows.CurrentWeekLoad += load
		} else if a.StartedAt.After(twoWeeksAgo) {
			windows.PreviousWeekLoad += load
		}
	}

	windows.AvgMonthlyLoad = windows.MonthLoad / 4.3

	return windows
}
