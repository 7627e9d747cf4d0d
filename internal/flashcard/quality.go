package flashcard

import (
	"math"

	"github.com/vytor/drillflash/internal/models"
)

// Response time bands, in milliseconds.
const (
	fastResponseMs  = 3000
	slowResponseMs  = 7000
	floorResponseMs = 15000
)

// NormalizeQuality turns a review session into a 0-5 quality score:
// accuracy*5, weighted by response time and by the difficulty label.
func NormalizeQuality(cfg models.SRSConfig, session models.ReviewSession) int {
	accuracy := 0.0
	if session.Correct {
		accuracy = 1
	}
	score := accuracy * MaxQuality * ResponseTimeWeight(cfg, session.ResponseTime) * DifficultyMultiplier(cfg, session.Difficulty)
	return clampInt(int(math.Round(score)), 0, MaxQuality)
}

// ResponseTimeWeight is 1 for 3-7s answers. Faster answers look like guessing
// and lose half of cfg.TimeWeight; slower answers lose up to the full
// cfg.TimeWeight, reached at 15s.
func ResponseTimeWeight(cfg models.SRSConfig, ms int64) float64 {
	switch {
	case ms < fastResponseMs:
		return 1 - cfg.TimeWeight/2
	case ms <= slowResponseMs:
		return 1
	case ms >= floorResponseMs:
		return 1 - cfg.TimeWeight
	default:
		frac := float64(ms-slowResponseMs) / float64(floorResponseMs-slowResponseMs)
		return 1 - cfg.TimeWeight*frac
	}
}

// DifficultyMultiplier scales quality by how hard the item was.
func DifficultyMultiplier(cfg models.SRSConfig, d models.Difficulty) float64 {
	switch d {
	case models.DifficultyEasy:
		return 1 - cfg.DifficultyWeight
	case models.DifficultyHard:
		return 1 + cfg.DifficultyWeight
	default:
		return 1
	}
}
