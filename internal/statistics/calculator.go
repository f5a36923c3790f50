package statistics

import (
	"math"

	"github.com/biopeak/analytics/internal/activity"
)

const maxPlausibleHeartRate = 250

// Metrics holds per activity pacing and heart rate variability numbers.
// Zero values mean the source data was not good enough to compute them.
type Metrics struct {
	UserID             string  `json:"userId"`
	ActivityID         string  `json:"activityId"`
	TotalDistanceKM    float64 `json:"totalDistanceKm"`
	TotalTimeMinutes   float64 `json:"totalTimeMinutes"`
	AveragePaceMinKM   float64 `json:"averagePaceMinKm"`
	AverageHeartRate   float64 `json:"averageHeartRate"`
	MaxHeartRate       float64 `json:"maxHeartRate"`
	HeartRateStdDev    float64 `json:"heartRateStdDev"`
	HeartRateCVPercent float64 `json:"heartRateCvPercent"`
	PaceStdDev         float64 `json:"paceStdDev"`
	PaceCVPercent      float64 `json:"paceCvPercent"`
}

// Calculate derives the metrics for one activity from its summary row and
// its recording streams. The summary distance and duration win over values
// derived from the streams, matching what the rest of the product shows.
func Calculate(a activity.Activity, samples *activity.Samples) Metrics {
	metrics := Metrics{
		UserID:     a.UserID,
		ActivityID: a.ID,
	}

	var distances, times, heartRates []float64
	if samples != nil {
		distances, times, heartRates = samples.Distances, samples.Times, samples.HeartRates
	}

	if a.DistanceMeters > 0 {
		metrics.TotalDistanceKM = a.DistanceMeters / 1000
	} else if len(distances) > 0 {
		metrics.TotalDistanceKM = distances[len(distances)-1] / 1000
	}

	if a.DurationSeconds > 0 {
		metrics.TotalTimeMinutes = float64(a.DurationSeconds) / 60
	} else if len(times) > 1 {
		metrics.TotalTimeMinutes = (times[len(times)-1] - times[0]) / 60
	}

	if metrics.TotalDistanceKM > 0 && metrics.TotalTimeMinutes > 0 {
		metrics.AveragePaceMinKM = metrics.TotalTimeMinutes / metrics.TotalDistanceKM
	}

	if validRates := plausibleHeartRates(heartRates); len(validRates) > 0 {
		mean, stdDev := meanAndStdDev(validRates)
		metrics.AverageHeartRate = mean
		metrics.HeartRateStdDev = stdDev
		metrics.MaxHeartRate = maxOf(validRates)
		if mean > 0 {
			metrics.HeartRateCVPercent = stdDev / mean * 100
		}
	}

	if paces := intervalPaces(distances, times); len(paces) > 0 {
		_, stdDev := meanAndStdDev(paces)
		metrics.PaceStdDev = stdDev
		if metrics.AveragePaceMinKM > 0 {
			metrics.PaceCVPercent = stdDev / metrics.AveragePaceMinKM * 100
		}
	}

	return roundMetrics(metrics)
}

func plausibleHeartRates(heartRates []float64) []float64 {
	var valid []float64
	for _, hr := range heartRates {
		if hr > 0 && hr < maxPlausibleHeartRate {
			valid = append(valid, hr)
		}
	}
	return valid
}

// intervalPaces converts consecutive distance/time deltas to min/km paces,
// skipping stalled or glitchy intervals.
func intervalPaces(distances, times []float64) []float64 {
	if len(distances) != len(times) {
		return nil
	}
	var paces []float64
	for i := 1; i < len(distances); i++ {
		deltaDistance := distances[i] - distances[i-1]
		deltaTime := times[i] - times[i-1]
		if deltaDistance <= 0 || deltaTime <= 0 {
			continue
		}
		paces = append(paces, (deltaTime/60)*(1000/deltaDistance))
	}
	return paces
}

func meanAndStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func maxOf(values []float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func roundMetrics(m Metrics) Metrics {
	m.TotalDistanceKM = round2(m.TotalDistanceKM)
	m.TotalTimeMinutes = round2(m.TotalTimeMinutes)
	m.AveragePaceMinKM = round2(m.AveragePaceMinKM)
	m.AverageHeartRate = round2(m.AverageHeartRate)
	m.MaxHeartRate = round2(m.MaxHeartRate)
	m.HeartRateStdDev = round2(m.HeartRateStdDev)
	m.HeartRateCVPercent = round2(m.HeartRateCVPercent)
	m.PaceStdDev = round2(m.PaceStdDev)
	m.PaceCVPercent = round2(m.PaceCVPercent)
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
