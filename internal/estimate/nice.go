package estimate

import "math"

// Ladder is the set of human-friendly durations estimates are rounded to.
// Anything longer goes to the nearest multiple of 30.
var Ladder = []int{5, 10, 15, 20, 30, 45, 60, 90}

// RoundNice maps minutes to the smallest ladder rung that covers it, or to the
// nearest multiple of 30 beyond the ladder.
func RoundNice(minutes float64) int {
	for _, rung := range Ladder {
		if minutes <= float64(rung) {
			return rung
		}
	}
	return int(math.Round(minutes/30)) * 30
}
