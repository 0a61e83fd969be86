package ml

import "time"

// DelayThresholdMinutes is the cutoff above which a departure counts as delayed.
const DelayThresholdMinutes = 15.0

// DelayMinutes returns the signed difference between the actual and the
// scheduled departure time, in minutes. Negative means the flight left early.
func DelayMinutes(scheduled, actual time.Time) float64 {
	return actual.Sub(scheduled).Minutes()
}

// DelayLabel derives the training label: 1 when the flight left more than
// 15 minutes late, 0 otherwise. Exactly 15 minutes is still on time.
// Only meaningful at training time, when the actual departure is known.
func DelayLabel(scheduled, actual time.Time) int {
	if DelayMinutes(scheduled, actual) > DelayThresholdMinutes {
		return 1
	}
	return 0
}
