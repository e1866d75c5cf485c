package strategy

import "github.com/rcliao/nudge/internal/model"

type difficulty int

const (
	easy difficulty = iota
	moderate
	hard
)

func difficultyOf(minutes int, p model.Priority) difficulty {
	switch {
	case minutes >= LongMinutes || p == model.PriorityHigh:
		return hard
	case minutes <= ShortMinutes:
		return easy
	default:
		return moderate
	}
}

// MatchEnergy compares task difficulty with the current energy tier.
func MatchEnergy(energy model.EnergyLevel, minutes int, p model.Priority) model.EnergyVerdict {
	d := difficultyOf(minutes, p)
	switch {
	case energy == model.EnergyHigh && d == hard:
		return model.EnergyVerdict{Match: model.EnergyMatchPerfect, Message: "Perfect match: you have the energy for a hard task"}
	case energy == model.EnergyHigh && d == easy:
		return model.EnergyVerdict{Match: model.EnergyMatchMismatch, Message: "You're wasting high energy on an easy task"}
	case energy == model.EnergyMedium && d == hard:
		return model.EnergyVerdict{Match: model.EnergyMatchMismatch, Message: "This one may need more energy than you have right now"}
	case energy == model.EnergyLow && d == easy:
		return model.EnergyVerdict{Match: model.EnergyMatchPerfect, Message: "Perfect match: an easy task for a low-energy moment"}
	default:
		return model.EnergyVerdict{Match: model.EnergyMatchGood, Message: "Good fit for your current energy"}
	}
}

// Timing says whether the hour suits starting the task.
func Timing(energy model.EnergyLevel, overdue bool, hour int) model.TimingVerdict {
	switch {
	case overdue:
		return model.TimingVerdict{GoodTime: true, Message: "Good time: it's overdue, do it now"}
	case energy == model.EnergyHigh:
		return model.TimingVerdict{GoodTime: true, Message: "Good time: your energy is high"}
	case hour >= 9 && hour < 11:
		return model.TimingVerdict{GoodTime: true, Message: "Good time: morning focus hours"}
	case hour >= 13 && hour < 15 && energy == model.EnergyLow:
		return model.TimingVerdict{Message: "Post-lunch dip: consider deferring this"}
	case hour >= 21:
		return model.TimingVerdict{Message: "Getting late: defer this to the morning"}
	default:
		return model.TimingVerdict{GoodTime: true, Message: "Now works"}
	}
}
