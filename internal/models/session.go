package models

import "time"

// Difficulty is the coarse difficulty label attached to a review.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ReviewSession is one completed review of a card. It is consumed by the
// scheduler and never persisted on its own.
type ReviewSession struct {
	CardID       string     `json:"card_id"`
	Answer       string     `json:"answer"`
	Correct      bool       `json:"correct"`
	ResponseTime int64      `json:"response_time"` // milliseconds
	Difficulty   Difficulty `json:"difficulty"`
	Confidence   float64    `json:"confidence"`
	Timestamp    time.Time  `json:"timestamp"`
}

// SessionSummary describes a finished practice session.
type SessionSummary struct {
	UserID       string        `json:"user_id"`
	CardsStudied int           `json:"cards_studied"`
	Correct      int           `json:"correct"`
	Duration     time.Duration `json:"duration"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
}

// Accuracy returns the share of correct answers in the session.
func (s SessionSummary) Accuracy() float64 {
	if s.CardsStudied == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.CardsStudied)
}
