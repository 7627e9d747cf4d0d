package models

import "time"

// HistorySize is the number of recent outcomes kept per card.
const HistorySize = 10

// CardState is the learning stage of a card.
type CardState string

const (
	CardStateNew       CardState = "new"
	CardStateLearning  CardState = "learning"
	CardStateReviewing CardState = "reviewing"
	CardStateMastered  CardState = "mastered"
)

// ReviewCard is one learnable item together with its scheduling state.
type ReviewCard struct {
	ID          string      `json:"id"`
	Content     CardContent `json:"content"`
	Memory      MemoryState `json:"memory"`
	Performance Performance `json:"performance"`
	State       CardState   `json:"state"`
	CreatedAt   time.Time   `json:"created_at"`
	// MasteredAt is set the first time the card reaches the mastered state
	// and never changes afterwards.
	MasteredAt time.Time `json:"mastered_at,omitempty"`
}

// CardContent is the caller-owned payload of a card.
type CardContent struct {
	SourceText string `json:"source_text" validate:"required"`
	TargetText string `json:"target_text" validate:"required"`
	Level      int    `json:"level" validate:"gte=0"`
	Stage      int    `json:"stage" validate:"gte=0"`
	Pattern    string `json:"pattern,omitempty"`
}

type MemoryState struct {
	Strength     float64   `json:"strength"`
	EaseFactor   float64   `json:"ease_factor"`
	Interval     int       `json:"interval"`
	ReviewCount  int       `json:"review_count"`
	LastReviewed time.Time `json:"last_reviewed"`
	NextReview   time.Time `json:"next_review"`
	Difficulty   float64   `json:"difficulty"`
}

// Performance holds the rolling review history of a card.
// Accuracy entries are 0 or 1; ResponseTime entries are milliseconds.
type Performance struct {
	Accuracy     []int   `json:"accuracy"`
	ResponseTime []int64 `json:"response_time"`
	Streak       int     `json:"streak"`
	Mistakes     int     `json:"mistakes"`
}

// Record returns a copy of p with the outcome appended. Both histories keep
// at most HistorySize entries, oldest dropped first.
func (p Performance) Record(correct bool, responseTime int64) Performance {
	acc := 0
	if correct {
		acc = 1
	}
	out := Performance{
		Accuracy:     pushBounded(p.Accuracy, acc, HistorySize),
		ResponseTime: pushBounded(p.ResponseTime, responseTime, HistorySize),
		Streak:       p.Streak,
		Mistakes:     p.Mistakes,
	}
	if correct {
		out.Streak++
	} else {
		out.Streak = 0
		out.Mistakes++
	}
	return out
}

// RecentAccuracy returns the mean of the last n accuracy entries and whether
// there was any history at all.
func (p Performance) RecentAccuracy(n int) (float64, bool) {
	window := tail(p.Accuracy, n)
	if len(window) == 0 {
		return 0, false
	}
	sum := 0
	for _, v := range window {
		sum += v
	}
	return float64(sum) / float64(len(window)), true
}

// RecentResponseTime returns the mean of the last n response times in ms.
func (p Performance) RecentResponseTime(n int) (float64, bool) {
	window := tail(p.ResponseTime, n)
	if len(window) == 0 {
		return 0, false
	}
	var sum int64
	for _, v := range window {
		sum += v
	}
	return float64(sum) / float64(len(window)), true
}

// RecentOutcomes returns correct and total counts over the last n outcomes.
func (p Performance) RecentOutcomes(n int) (correct, total int) {
	for _, v := range tail(p.Accuracy, n) {
		correct += v
		total++
	}
	return correct, total
}

// pushBounded never writes into xs so the caller's card stays untouched.
func pushBounded[T any](xs []T, v T, capacity int) []T {
	start := 0
	if len(xs)+1 > capacity {
		start = len(xs) + 1 - capacity
	}
	out := make([]T, 0, capacity)
	out = append(out, xs[start:]...)
	return append(out, v)
}

func tail[T any](xs []T, n int) []T {
	if n <= 0 || len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
