package flashcard

import (
	"time"

	"github.com/vytor/drillflash/internal/models"
)

// Fixed is a deterministic strategy for tests and previews. It returns the
// configured constants, still honouring the restart rule and all clamps.
type Fixed struct {
	Interval     int
	EaseFactor   float64
	Strength     float64
	QualityScore int
}

// NextInterval returns Interval, or 1 for a failing grade.
func (f Fixed) NextInterval(cfg models.SRSConfig, _ int, _ float64, quality, _ int) int {
	if quality < cfg.PassingGrade {
		return 1
	}
	return ClampInterval(cfg, f.Interval)
}

// UpdateEaseFactor returns EaseFactor clamped to the configured range.
func (f Fixed) UpdateEaseFactor(cfg models.SRSConfig, _ float64, _ int) float64 {
	return ClampEase(cfg, f.EaseFactor)
}

// UpdateMemoryStrength returns Strength, ignoring decay.
func (f Fixed) UpdateMemoryStrength(_ models.SRSConfig, _ float64, _ int, _ time.Duration) float64 {
	return ClampStrength(f.Strength)
}

// Quality returns QualityScore for correct answers and 0 otherwise.
func (f Fixed) Quality(_ models.SRSConfig, session models.ReviewSession) int {
	if !session.Correct {
		return 0
	}
	return clampInt(f.QualityScore, 0, MaxQuality)
}
