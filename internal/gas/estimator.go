package gas

import (
	"math"
	"time"

	"github.com/biopeak/analytics/internal/activity"

	log "github.com/sirupsen/logrus"
)

// Fitness-Fatigue model constants (Banister impulse-response form).
const (
	restingHeartRate = 60.0
	fitnessWeight    = 1.0 // K1
	fatigueWeight    = 2.0 // K2
	fitnessDecayDays = 42.0
	fatigueDecayDays = 7.0
)

// Result holds the Fitness-Fatigue scalars for one user and date.
// Performance is the fitness and fatigue difference.
type Result struct {
	UserID      string  `json:"userId"`
	Fitness     float64 `json:"fitness"`
	Fatigue     float64 `json:"fatigue"`
	Performance float64 `json:"performance"`
	Date        string  `json:"date"`
}

// Estimate runs the Fitness-Fatigue accumulation over the user's history up
// to and including the given date. Each activity contributes a TRIMP impulse
// decayed by its age; rows with unusable heart rate or duration data are
// skipped rather than failing the whole run.
func Estimate(userID string, activities []activity.Activity, today time.Time) Result {
	var fitness, fatigue float64

	for _, a := range activities {
		minutes := float64(a.DurationSeconds) / 60
		if minutes <= 0 || a.AvgHeartRate <= 0 || a.MaxHeartRate <= 0 {
			log.Debugf("gas estimate, skipping invalid record for user %s: mins=%.1f avgHR=%.0f maxHR=%.0f",
				userID, minutes, a.AvgHeartRate, a.MaxHeartRate)
			continue
		}
		hrDenominator := a.MaxHeartRate - restingHeartRate
		if hrDenominator <= 0 {
			log.Debugf("gas estimate, skipping non-positive HR denominator for user %s: maxHR=%.0f", userID, a.MaxHeartRate)
			continue
		}

		trimp := minutes * ((a.AvgHeartRate - restingHeartRate) / hrDenominator)
		daysAgo := daysBetween(a.StartedAt, today)

		fitness += fitnessWeight * trimp * math.Exp(-daysAgo/fitnessDecayDays)
		fatigue += fatigueWeight * trimp * math.Exp(-daysAgo/fatigueDecayDays)
	}

	return Result{
		UserID:      userID,
		Fitness:     round2(fitness),
		Fatigue:     round2(fatigue),
		Performance: round2(fitness - fatigue),
		Date:        today.UTC().Format("2006-01-02"),
	}
}

// daysBetween counts whole calendar days from the activity to the reference
// date, normalized to midnight UTC. Never negative.
func daysBetween(from, to time.Time) float64 {
	fromUTC := from.UTC().Truncate(24 * time.Hour)
	toUTC := to.UTC().Truncate(24 * time.Hour)
	days := math.Round(toUTC.Sub(fromUTC).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func round2(val float64) float64 {
	return math.Round(val*100) / 100
}
