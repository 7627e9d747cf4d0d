package services

import (
	"context"
	"math"
	"time"

	"github.com/vytor/drillflash/internal/errors"
	"github.com/vytor/drillflash/internal/logger"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
	"github.com/vytor/drillflash/internal/validator"
)

// ConfigProvider supplies scheduling parameters. Effective configs are built
// as default <- level override <- user override.
type ConfigProvider interface {
	DefaultConfig() models.SRSConfig
	ConfigForLevel(level int) models.SRSConfigOverride
	ConfigForUser(ctx context.Context, userID string) (models.SRSConfigOverride, error)
	SaveUserConfig(ctx context.Context, userID string, override models.SRSConfigOverride) error
	ValidateOverride(override models.SRSConfigOverride) error
	Compose(level int, user models.SRSConfigOverride) models.SRSConfig
	Resolve(ctx context.Context, userID string, level int) (models.SRSConfig, error)
	SuggestAdjustments(metrics models.LearningMetrics) models.SRSConfigOverride
}

// LevelBand maps a range of content levels to an override.
type LevelBand struct {
	MinLevel int
	MaxLevel int
	Override models.SRSConfigOverride
}

// DefaultLevelBands gives beginners shorter horizons and more learning
// steps, and advanced levels a higher starting ease. Intermediate levels use
// the defaults unchanged.
func DefaultLevelBands() []LevelBand {
	return []LevelBand{
		{
			MinLevel: 0,
			MaxLevel: 1,
			Override: models.SRSConfigOverride{
				InitialEaseFactor: models.Float(2.3),
				MaxInterval:       models.Int(180),
				LearningSteps:     []time.Duration{time.Minute, 5 * time.Minute, 10 * time.Minute},
			},
		},
		{
			MinLevel: 4,
			MaxLevel: math.MaxInt,
			Override: models.SRSConfigOverride{
				InitialEaseFactor: models.Float(2.7),
				EasyInterval:      models.Int(7),
			},
		},
	}
}

type configProvider struct {
	defaults models.SRSConfig
	bands    []LevelBand
	users    repository.UserConfigRepository
}

// NewConfigProvider creates a ConfigProvider. Per-user overrides are read
// from and written to users.
func NewConfigProvider(defaults models.SRSConfig, bands []LevelBand, users repository.UserConfigRepository) ConfigProvider {
	return &configProvider{defaults: defaults, bands: bands, users: users}
}

func (p *configProvider) DefaultConfig() models.SRSConfig {
	// re-applying the steps hands the caller its own copy of the slice
	return p.defaults.Apply(models.SRSConfigOverride{LearningSteps: p.defaults.LearningSteps})
}

func (p *configProvider) ConfigForLevel(level int) models.SRSConfigOverride {
	for _, b := range p.bands {
		if level >= b.MinLevel && level <= b.MaxLevel {
			return b.Override
		}
	}
	return models.SRSConfigOverride{}
}

func (p *configProvider) ConfigForUser(ctx context.Context, userID string) (models.SRSConfigOverride, error) {
	log := logger.FromContext(ctx)
	override, err := p.users.Get(ctx, userID)
	if err != nil {
		log.Error("failed to load config override: user_id=%s: %v", userID, err)
		return models.SRSConfigOverride{}, errors.NewInternalError(err)
	}
	return override, nil
}

// ValidateOverride checks override on top of the defaults and on top of
// every level band, so no level can end up with an inconsistent config.
func (p *configProvider) ValidateOverride(override models.SRSConfigOverride) error {
	if err := validator.Struct(p.defaults.Apply(override)); err != nil {
		return err
	}
	for _, b := range p.bands {
		if err := validator.Struct(p.Compose(b.MinLevel, override)); err != nil {
			return err
		}
	}
	return nil
}

// SaveUserConfig validates the override before persisting it. Persistence
// failures come back as CONFIG_SAVE_FAILED.
func (p *configProvider) SaveUserConfig(ctx context.Context, userID string, override models.SRSConfigOverride) error {
	log := logger.FromContext(ctx)
	log.Debug("saving config override: user_id=%s", userID)

	if err := p.ValidateOverride(override); err != nil {
		return err
	}
	if err := p.users.Save(ctx, userID, override); err != nil {
		log.Error("failed to save config override: user_id=%s: %v", userID, err)
		return errors.NewConfigSaveError(userID, err)
	}
	return nil
}

func (p *configProvider) Compose(level int, user models.SRSConfigOverride) models.SRSConfig {
	return p.defaults.Apply(p.ConfigForLevel(level).Merge(user))
}

func (p *configProvider) Resolve(ctx context.Context, userID string, level int) (models.SRSConfig, error) {
	user, err := p.ConfigForUser(ctx, userID)
	if err != nil {
		return models.SRSConfig{}, err
	}
	return p.Compose(level, user), nil
}

const (
	strongAccuracy  = 0.85
	strongRetention = 0.8
	weakAccuracy    = 0.6
	weakRetention   = 0.5
	// sessions per week below which long intervals are trimmed
	sparseStudy = 3.0
)

// SuggestAdjustments proposes bound changes from recent learning metrics.
// The result is advisory; nothing applies it automatically.
func (p *configProvider) SuggestAdjustments(m models.LearningMetrics) models.SRSConfigOverride {
	d := p.defaults
	var o models.SRSConfigOverride

	switch {
	case m.Accuracy >= strongAccuracy && m.Retention >= strongRetention:
		o.MaxEaseFactor = models.Float(round2(d.MaxEaseFactor + 0.2))
		o.InitialEaseFactor = models.Float(round2(math.Min(d.InitialEaseFactor+0.1, d.MaxEaseFactor+0.2)))
		o.MaxInterval = models.Int(int(math.Round(float64(d.MaxInterval) * 1.2)))
	case m.Accuracy < weakAccuracy || m.Retention < weakRetention:
		o.MinEaseFactor = models.Float(round2(math.Max(1.1, d.MinEaseFactor-0.1)))
		o.InitialEaseFactor = models.Float(round2(math.Max(d.MinEaseFactor, d.InitialEaseFactor-0.2)))
		o.MaxInterval = models.Int(int(math.Round(float64(d.MaxInterval) * 0.8)))
	}

	if m.StudyFrequency > 0 && m.StudyFrequency < sparseStudy {
		limit := int(math.Round(float64(d.MaxInterval) * 0.8))
		if o.MaxInterval == nil || *o.MaxInterval > limit {
			o.MaxInterval = models.Int(limit)
		}
	}
	return o
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
