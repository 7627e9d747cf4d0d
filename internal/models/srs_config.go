package models

import "time"

// SRSConfig is an immutable snapshot of scheduling parameters.
type SRSConfig struct {
	InitialEaseFactor float64 `json:"initial_ease_factor" validate:"gtefield=MinEaseFactor,ltefield=MaxEaseFactor"`
	MinEaseFactor     float64 `json:"min_ease_factor" validate:"gt=0"`
	MaxEaseFactor     float64 `json:"max_ease_factor" validate:"gtefield=MinEaseFactor"`
	EaseBonus         float64 `json:"ease_bonus" validate:"gte=0"`
	EasePenalty       float64 `json:"ease_penalty" validate:"gte=0"`

	MinInterval        int             `json:"min_interval" validate:"gte=1"`
	MaxInterval        int             `json:"max_interval" validate:"gtefield=MinInterval"`
	LearningSteps      []time.Duration `json:"learning_steps"`
	GraduatingInterval int             `json:"graduating_interval" validate:"gte=1"`
	EasyInterval       int             `json:"easy_interval" validate:"gte=1"`

	InitialMemoryStrength float64 `json:"initial_memory_strength" validate:"gte=0.1,lte=1"`
	MemoryDecayRate       float64 `json:"memory_decay_rate" validate:"gte=0"`
	DifficultyWeight      float64 `json:"difficulty_weight" validate:"gte=0,lte=1"`
	TimeWeight            float64 `json:"time_weight" validate:"gte=0,lte=1"`

	PassingGrade int `json:"passing_grade" validate:"gte=0,lte=5"`
	EasyGrade    int `json:"easy_grade" validate:"gte=0,lte=5"`
}

// DefaultSRSConfig returns the built-in parameter set.
func DefaultSRSConfig() SRSConfig {
	return SRSConfig{
		InitialEaseFactor:     2.5,
		MinEaseFactor:         1.3,
		MaxEaseFactor:         3.0,
		EaseBonus:             0.05,
		EasePenalty:           0.1,
		MinInterval:           1,
		MaxInterval:           365,
		LearningSteps:         []time.Duration{time.Minute, 10 * time.Minute},
		GraduatingInterval:    1,
		EasyInterval:          6,
		InitialMemoryStrength: 0.3,
		MemoryDecayRate:       0.1,
		DifficultyWeight:      0.2,
		TimeWeight:            0.4,
		PassingGrade:          3,
		EasyGrade:             5,
	}
}

// SRSConfigOverride is a partial SRSConfig. Nil fields leave the base value
// alone. It is also the persisted per-user record.
type SRSConfigOverride struct {
	InitialEaseFactor     *float64        `json:"initial_ease_factor,omitempty"`
	MinEaseFactor         *float64        `json:"min_ease_factor,omitempty"`
	MaxEaseFactor         *float64        `json:"max_ease_factor,omitempty"`
	EaseBonus             *float64        `json:"ease_bonus,omitempty"`
	EasePenalty           *float64        `json:"ease_penalty,omitempty"`
	MinInterval           *int            `json:"min_interval,omitempty"`
	MaxInterval           *int            `json:"max_interval,omitempty"`
	LearningSteps         []time.Duration `json:"learning_steps,omitempty"`
	GraduatingInterval    *int            `json:"graduating_interval,omitempty"`
	EasyInterval          *int            `json:"easy_interval,omitempty"`
	InitialMemoryStrength *float64        `json:"initial_memory_strength,omitempty"`
	MemoryDecayRate       *float64        `json:"memory_decay_rate,omitempty"`
	DifficultyWeight      *float64        `json:"difficulty_weight,omitempty"`
	TimeWeight            *float64        `json:"time_weight,omitempty"`
	PassingGrade          *int            `json:"passing_grade,omitempty"`
	EasyGrade             *int            `json:"easy_grade,omitempty"`
}

// IsEmpty reports whether the override sets nothing.
func (o SRSConfigOverride) IsEmpty() bool {
	return o.InitialEaseFactor == nil && o.MinEaseFactor == nil && o.MaxEaseFactor == nil &&
		o.EaseBonus == nil && o.EasePenalty == nil && o.MinInterval == nil && o.MaxInterval == nil &&
		o.LearningSteps == nil && o.GraduatingInterval == nil && o.EasyInterval == nil &&
		o.InitialMemoryStrength == nil && o.MemoryDecayRate == nil && o.DifficultyWeight == nil &&
		o.TimeWeight == nil && o.PassingGrade == nil && o.EasyGrade == nil
}

// Apply merges o onto c shallowly and returns the result. c is not modified.
func (c SRSConfig) Apply(o SRSConfigOverride) SRSConfig {
	setFloat(&c.InitialEaseFactor, o.InitialEaseFactor)
	setFloat(&c.MinEaseFactor, o.MinEaseFactor)
	setFloat(&c.MaxEaseFactor, o.MaxEaseFactor)
	setFloat(&c.EaseBonus, o.EaseBonus)
	setFloat(&c.EasePenalty, o.EasePenalty)
	setInt(&c.MinInterval, o.MinInterval)
	setInt(&c.MaxInterval, o.MaxInterval)
	if o.LearningSteps != nil {
		c.LearningSteps = append([]time.Duration(nil), o.LearningSteps...)
	}
	setInt(&c.GraduatingInterval, o.GraduatingInterval)
	setInt(&c.EasyInterval, o.EasyInterval)
	setFloat(&c.InitialMemoryStrength, o.InitialMemoryStrength)
	setFloat(&c.MemoryDecayRate, o.MemoryDecayRate)
	setFloat(&c.DifficultyWeight, o.DifficultyWeight)
	setFloat(&c.TimeWeight, o.TimeWeight)
	setInt(&c.PassingGrade, o.PassingGrade)
	setInt(&c.EasyGrade, o.EasyGrade)
	return c
}

// Merge layers next on top of o; fields set in next win.
func (o SRSConfigOverride) Merge(next SRSConfigOverride) SRSConfigOverride {
	pickFloat(&o.InitialEaseFactor, next.InitialEaseFactor)
	pickFloat(&o.MinEaseFactor, next.MinEaseFactor)
	pickFloat(&o.MaxEaseFactor, next.MaxEaseFactor)
	pickFloat(&o.EaseBonus, next.EaseBonus)
	pickFloat(&o.EasePenalty, next.EasePenalty)
	pickInt(&o.MinInterval, next.MinInterval)
	pickInt(&o.MaxInterval, next.MaxInterval)
	if next.LearningSteps != nil {
		o.LearningSteps = next.LearningSteps
	}
	pickInt(&o.GraduatingInterval, next.GraduatingInterval)
	pickInt(&o.EasyInterval, next.EasyInterval)
	pickFloat(&o.InitialMemoryStrength, next.InitialMemoryStrength)
	pickFloat(&o.MemoryDecayRate, next.MemoryDecayRate)
	pickFloat(&o.DifficultyWeight, next.DifficultyWeight)
	pickFloat(&o.TimeWeight, next.TimeWeight)
	pickInt(&o.PassingGrade, next.PassingGrade)
	pickInt(&o.EasyGrade, next.EasyGrade)
	return o
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func pickFloat(dst **float64, v *float64) {
	if v != nil {
		*dst = v
	}
}

func pickInt(dst **int, v *int) {
	if v != nil {
		*dst = v
	}
}

// Float returns a pointer to v, for building overrides.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building overrides.
func Int(v int) *int { return &v }
