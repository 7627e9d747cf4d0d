package config

import (
	"fmt"
	"math"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/services"
)

// levelBandEntry is one item of the "bands" list in a level band file.
// An absent max_level leaves the band open-ended.
type levelBandEntry struct {
	MinLevel           int      `koanf:"min_level"`
	MaxLevel           *int     `koanf:"max_level"`
	InitialEaseFactor  *float64 `koanf:"initial_ease_factor"`
	MinEaseFactor      *float64 `koanf:"min_ease_factor"`
	MaxEaseFactor      *float64 `koanf:"max_ease_factor"`
	MaxInterval        *int     `koanf:"max_interval"`
	GraduatingInterval *int     `koanf:"graduating_interval"`
	EasyInterval       *int     `koanf:"easy_interval"`
	LearningSteps      string   `koanf:"learning_steps"`
}

// LoadLevelBands reads per-level overrides from a YAML file shaped like
//
//	bands:
//	  - min_level: 0
//	    max_level: 1
//	    max_interval: 180
//	    learning_steps: 1m,5m,10m
//
// Bands must not overlap.
func LoadLevelBands(path string) ([]services.LevelBand, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load level bands %s: %w", path, err)
	}

	var entries []levelBandEntry
	if err := k.Unmarshal("bands", &entries); err != nil {
		return nil, fmt.Errorf("decode level bands %s: %w", path, err)
	}

	bands := make([]services.LevelBand, 0, len(entries))
	for i, e := range entries {
		band, err := e.toBand()
		if err != nil {
			return nil, fmt.Errorf("level band %d: %w", i, err)
		}
		for _, prev := range bands {
			if band.MinLevel <= prev.MaxLevel && prev.MinLevel <= band.MaxLevel {
				return nil, fmt.Errorf("level band %d overlaps levels %d-%d", i, prev.MinLevel, prev.MaxLevel)
			}
		}
		bands = append(bands, band)
	}
	return bands, nil
}

func (e levelBandEntry) toBand() (services.LevelBand, error) {
	maxLevel := math.MaxInt
	if e.MaxLevel != nil {
		maxLevel = *e.MaxLevel
	}
	if e.MinLevel < 0 || maxLevel < e.MinLevel {
		return services.LevelBand{}, fmt.Errorf("invalid level range %d-%d", e.MinLevel, maxLevel)
	}

	override := models.SRSConfigOverride{
		InitialEaseFactor:  e.InitialEaseFactor,
		MinEaseFactor:      e.MinEaseFactor,
		MaxEaseFactor:      e.MaxEaseFactor,
		MaxInterval:        e.MaxInterval,
		GraduatingInterval: e.GraduatingInterval,
		EasyInterval:       e.EasyInterval,
	}
	if e.LearningSteps != "" {
		steps, err := ParseLearningSteps(e.LearningSteps)
		if err != nil {
			return services.LevelBand{}, err
		}
		override.LearningSteps = steps
	}
	return services.LevelBand{MinLevel: e.MinLevel, MaxLevel: maxLevel, Override: override}, nil
}
