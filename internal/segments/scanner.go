package segments

import (
	"errors"
	"fmt"
)

const targetSegmentMeters = 1000

var ErrInvalidStreams = errors.New("distance and time streams must be aligned and have at least 2 points")

// BestSegment describes the fastest continuous window of at least 1km
// within an activity recording.
type BestSegment struct {
	StartDistanceMeters float64 `json:"startDistanceMeters"`
	EndDistanceMeters   float64 `json:"endDistanceMeters"`
	StartTimeSeconds    float64 `json:"startTimeSeconds"`
	EndTimeSeconds      float64 `json:"endTimeSeconds"`
	PaceMinPerKM        float64 `json:"paceMinPerKm"`
}

func (bs *BestSegment) DurationSeconds() float64 {
	return bs.EndTimeSeconds - bs.StartTimeSeconds
}

// Scan finds the fastest 1km window in the given cumulative distance (meters)
// and time (seconds) streams. For each start point the window closes at the
// first point at least 1km further, and the pace is normalized to a full km.
// Returns nil when the recording never covers a full km.
func Scan(distances, times []float64) (*BestSegment, error) {
	if len(distances) != len(times) || len(distances) < 2 {
		return nil, fmt.Errorf(
			"%w: got %d distance and %d time points",
			ErrInvalidStreams, len(distances), len(times),
		)
	}

	// distances are cumulative, so the closing point only ever moves forward
	var best *BestSegment
	j := 1
	for i := 0; i < len(distances)-1; i++ {
		if j <= i {
			j = i + 1
		}
		targetDistance := distances[i] + targetSegmentMeters
		for j < len(distances) && distances[j] < targetDistance {
			j++
		}
		if j == len(distances) {
			// no later start can cover a full km either
			break
		}

		deltaTime := times[j] - times[i]
		actualDistance := distances[j] - distances[i]
		pace := (deltaTime / 60) * (targetSegmentMeters / actualDistance)

		if best == nil || pace < best.PaceMinPerKM {
			best = &BestSegment{
				StartDistanceMeters: distances[i],
				EndDistanceMeters:   distances[j],
				StartTimeSeconds:    times[i],
				EndTimeSeconds:      times[j],
				PaceMinPerKM:        pace,
			}
		}
	}

	return best, nil
}
