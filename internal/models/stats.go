package models

// ReviewStats aggregates scheduling state over a set of cards.
type ReviewStats struct {
	TotalCards          int     `json:"total_cards"`
	DueCards            int     `json:"due_cards"`
	MasteredCards       int     `json:"mastered_cards"`
	LearningCards       int     `json:"learning_cards"`
	AverageStrength     float64 `json:"average_strength"`
	AverageAccuracy     float64 `json:"average_accuracy"`
	AverageResponseTime float64 `json:"average_response_time"` // milliseconds
}

// Focus is the practice area a learner should prioritise.
type Focus string

const (
	FocusAccuracy  Focus = "accuracy"
	FocusSpeed     Focus = "speed"
	FocusRetention Focus = "retention"
)

// PatternStat is the recent correct/total tally for one pattern tag.
type PatternStat struct {
	Pattern  string  `json:"pattern"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// PerformanceAnalysis is derived from a set of cards for planning.
type PerformanceAnalysis struct {
	Patterns             []PatternStat `json:"patterns"`
	WeakPatterns         []string      `json:"weak_patterns"`
	StrongPatterns       []string      `json:"strong_patterns"`
	RecommendedFocus     Focus         `json:"recommended_focus"`
	EstimatedMasteryDays int           `json:"estimated_mastery_days"`
}

// LearningMetrics feed adaptive config suggestions.
type LearningMetrics struct {
	Accuracy       float64 `json:"accuracy"`        // 0..1
	Retention      float64 `json:"retention"`       // 0..1
	StudyFrequency float64 `json:"study_frequency"` // sessions per week
}
