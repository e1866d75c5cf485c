package estimate

import "fmt"

// Validation is the verdict on a user-entered duration.
type Validation struct {
	Realistic bool    `json:"realistic"`
	Generous  bool    `json:"generous"`
	Ratio     float64 `json:"ratio"`
	Message   string  `json:"message"`
}

// ValidateUserEstimate compares the user's guess with the engine's estimate.
// Only guesses under half the estimate count as unrealistic.
func ValidateUserEstimate(userMinutes, estimatedMinutes int) Validation {
	if estimatedMinutes <= 0 {
		return Validation{Realistic: true, Ratio: 1, Message: "No estimate to compare against"}
	}
	ratio := float64(userMinutes) / float64(estimatedMinutes)
	switch {
	case ratio < 0.5:
		return Validation{
			Ratio:   ratio,
			Message: fmt.Sprintf("%d minutes looks optimistic; similar tasks take about %d", userMinutes, estimatedMinutes),
		}
	case ratio > 2.0:
		return Validation{
			Realistic: true,
			Generous:  true,
			Ratio:     ratio,
			Message:   fmt.Sprintf("%d minutes is generous; it may only take about %d", userMinutes, estimatedMinutes),
		}
	default:
		return Validation{Realistic: true, Ratio: ratio, Message: "That estimate looks about right"}
	}
}
