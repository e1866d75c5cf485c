package model

// StrategyID names one of the fixed task-attack strategies.
type StrategyID string

const (
	StrategyTinyFirstStep  StrategyID = "tiny-first-step"
	StrategySprint15       StrategyID = "15-minute-sprint"
	StrategyEatTheFrog     StrategyID = "eat-the-frog"
	StrategyQuickWinsFirst StrategyID = "quick-wins-first"
	StrategyBreakItDown    StrategyID = "break-it-down"
	StrategyBodyDouble     StrategyID = "body-double"
	StrategyTimeBox        StrategyID = "time-box"
	StrategyJustStart      StrategyID = "just-start"
)

// Strategy describes a task-attack strategy.
type Strategy struct {
	ID          StrategyID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

// EnergyMatch is the verdict on how well a task fits the current energy.
type EnergyMatch string

const (
	EnergyMatchPerfect  EnergyMatch = "perfect"
	EnergyMatchGood     EnergyMatch = "good"
	EnergyMatchMismatch EnergyMatch = "mismatch"
)

// EnergyVerdict explains an EnergyMatch.
type EnergyVerdict struct {
	Match   EnergyMatch `json:"match"`
	Message string      `json:"message"`
}

// TimingVerdict says whether now is a good time to start a task.
type TimingVerdict struct {
	GoodTime bool   `json:"good_time"`
	Message  string `json:"message"`
}

// TaskAttackAnalysis is the full recommendation for how to start a task.
type TaskAttackAnalysis struct {
	Recommended   Strategy         `json:"recommended"`
	Alternatives  []Strategy       `json:"alternatives"`
	TinyFirstStep string           `json:"tiny_first_step"`
	Estimate      DurationEstimate `json:"estimate"`
	EnergyMatch   EnergyVerdict    `json:"energy_match"`
	Timing        TimingVerdict    `json:"timing"`
	CanBreakDown  bool             `json:"can_break_down"`
	SubSteps      []string         `json:"sub_steps,omitempty"`
}
