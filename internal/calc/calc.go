// Package calc provides small numeric helpers shared across the daemon.
package calc

import (
	"time"

	"golang.org/x/exp/constraints"
)

// Number covers every type Average can fold.
type Number interface {
	constraints.Integer | constraints.Float
}

// Average returns the arithmetic mean of numbers, or 0 for an empty slice.
// Callers that need to distinguish "no data" from "mean of zero" must check
// emptiness themselves (see pin.Collection.AverageTemperature).
func Average[T Number](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0
	}
	var sum T
	for _, n := range numbers {
		sum += n
	}
	return float64(sum) / float64(len(numbers))
}

// PercentToAnalog maps a duty percentage onto the device's 0..1023 analog
// range. Inputs above 100% clamp to full scale.
func PercentToAnalog(percent uint8) uint16 {
	if percent >= 100 {
		return 1023
	}
	return uint16(uint32(percent) * 1023 / 100)
}

// MoreRecent returns the later of two timestamps. The zero value means
// "absent": if one side is zero the other wins, and two zero values yield
// the zero value.
func MoreRecent(a, b time.Time) time.Time {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	if a.Before(b) {
		return b
	}
	return a
}
