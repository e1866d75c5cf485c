package model

// Confidence is a coarse trust tier for a derived value.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// EstimateSource says where a duration estimate came from.
type EstimateSource string

const (
	SourceHistorical   EstimateSource = "historical"
	SourceKeywordBased EstimateSource = "keywordBased"
)

// DurationEstimate is the predicted length of a task.
type DurationEstimate struct {
	Minutes     int            `json:"minutes"`
	Confidence  Confidence     `json:"confidence"`
	Source      EstimateSource `json:"source"`
	SampleCount int            `json:"sample_count"`
}
