package activity

import (
	"errors"
	"time"
)

const (
	TypeRun  = "run"
	TypeBike = "bike"
	TypeSwim = "swim"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrSamplesNotFound  = errors.New("activity samples not found")
)

type Activity struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Type            string    `json:"type"`
	StartedAt       time.Time `json:"startedAt"`
	DurationSeconds int       `json:"durationSeconds"`
	DistanceMeters  float64   `json:"distanceMeters"`
	Calories        float64   `json:"calories"`
	AvgHeartRate    float64   `json:"avgHeartRate"`
	MaxHeartRate    float64   `json:"maxHeartRate"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Samples holds the per-activity recording streams. Distances and Times are
// cumulative and index-aligned, HeartRates is optional and, when present,
// aligned with the other two.
type Samples struct {
	ActivityID string    `json:"activityId"`
	Distances  []float64 `json:"distances"`
	Times      []float64 `json:"times"`
	HeartRates []float64 `json:"heartRates,omitempty"`
}
