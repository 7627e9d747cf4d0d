package flashcard

import (
	"math"
	"time"

	"github.com/vytor/drillflash/internal/models"
)

const (
	// MinStrength and MaxStrength bound memory strength.
	MinStrength = 0.1
	MaxStrength = 1.0

	// MaxQuality is the top of the 0-5 quality scale.
	MaxQuality = 5

	day = 24 * time.Hour
)

// Strategy computes the next scheduling state from a review outcome.
// Implementations must be pure: same inputs, same outputs.
type Strategy interface {
	NextInterval(cfg models.SRSConfig, currentInterval int, easeFactor float64, quality, reviewCount int) int
	UpdateEaseFactor(cfg models.SRSConfig, easeFactor float64, quality int) float64
	UpdateMemoryStrength(cfg models.SRSConfig, strength float64, quality int, elapsed time.Duration) float64
	Quality(cfg models.SRSConfig, session models.ReviewSession) int
}

// SuperMemo is the production SM-2 variant with a forgetting curve.
type SuperMemo struct{}

// NewSuperMemo returns the production strategy.
func NewSuperMemo() Strategy {
	return SuperMemo{}
}

// NextInterval returns the interval in days. Failing grades restart at 1.
func (SuperMemo) NextInterval(cfg models.SRSConfig, currentInterval int, easeFactor float64, quality, reviewCount int) int {
	if quality < cfg.PassingGrade {
		return 1
	}

	var interval int
	switch reviewCount {
	case 0:
		interval = cfg.GraduatingInterval
	case 1:
		interval = cfg.EasyInterval
	default:
		interval = int(math.Round(float64(currentInterval) * easeFactor))
	}
	return ClampInterval(cfg, interval)
}

// UpdateEaseFactor applies EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)).
func (SuperMemo) UpdateEaseFactor(cfg models.SRSConfig, easeFactor float64, quality int) float64 {
	q := float64(clampInt(quality, 0, MaxQuality))
	ef := easeFactor + 0.1 - (5-q)*(0.08+(5-q)*0.02)
	switch {
	case quality >= cfg.EasyGrade:
		ef += cfg.EaseBonus
	case quality < cfg.PassingGrade:
		ef -= cfg.EasePenalty
	}
	return ClampEase(cfg, ef)
}

// UpdateMemoryStrength decays strength over the elapsed days, then
// reinforces it by quality/5 of the remaining headroom.
func (SuperMemo) UpdateMemoryStrength(cfg models.SRSConfig, strength float64, quality int, elapsed time.Duration) float64 {
	days := elapsed.Hours() / 24
	if days < 0 {
		days = 0
	}
	decayed := clampFloat(strength, MinStrength, MaxStrength) * math.Exp(-cfg.MemoryDecayRate*days)
	q := float64(clampInt(quality, 0, MaxQuality))
	reinforced := decayed + (q/MaxQuality)*(1-decayed)
	return clampFloat(reinforced, MinStrength, MaxStrength)
}

// Quality scores a session on the 0-5 scale.
func (SuperMemo) Quality(cfg models.SRSConfig, session models.ReviewSession) int {
	return NormalizeQuality(cfg, session)
}

// ClampInterval bounds an interval to the configured range.
func ClampInterval(cfg models.SRSConfig, interval int) int {
	return clampInt(interval, cfg.MinInterval, cfg.MaxInterval)
}

// ClampEase bounds an ease factor to the configured range.
func ClampEase(cfg models.SRSConfig, ef float64) float64 {
	return clampFloat(ef, cfg.MinEaseFactor, cfg.MaxEaseFactor)
}

// ClampStrength bounds a memory strength to [MinStrength, MaxStrength].
func ClampStrength(strength float64) float64 {
	return clampFloat(strength, MinStrength, MaxStrength)
}

// Days converts a whole number of days to a duration.
func Days(n int) time.Duration {
	return time.Duration(n) * day
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
