package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/drillflash/internal/errors"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository/memory"
	"github.com/vytor/drillflash/internal/services"
	"github.com/vytor/drillflash/internal/testutil/mocks"
)

func newProvider() services.ConfigProvider {
	return services.NewConfigProvider(models.DefaultSRSConfig(), services.DefaultLevelBands(), memory.NewUserConfigRepository())
}

func TestConfigProvider_DefaultConfigIsACopy(t *testing.T) {
	p := newProvider()
	cfg := p.DefaultConfig()
	cfg.LearningSteps[0] = time.Hour

	assert.Equal(t, models.DefaultSRSConfig(), p.DefaultConfig())
}

func TestConfigProvider_ConfigForLevel(t *testing.T) {
	p := newProvider()

	beginner := p.ConfigForLevel(0)
	require.NotNil(t, beginner.MaxInterval)
	assert.Equal(t, 180, *beginner.MaxInterval)
	assert.Len(t, beginner.LearningSteps, 3)

	assert.True(t, p.ConfigForLevel(2).IsEmpty())
	assert.True(t, p.ConfigForLevel(3).IsEmpty())

	advanced := p.ConfigForLevel(9)
	require.NotNil(t, advanced.InitialEaseFactor)
	assert.Equal(t, 2.7, *advanced.InitialEaseFactor)
}

func TestConfigProvider_ComposePrecedence(t *testing.T) {
	p := newProvider()
	user := models.SRSConfigOverride{MaxInterval: models.Int(60)}

	cfg := p.Compose(1, user)
	assert.Equal(t, 60, cfg.MaxInterval, "user beats level")
	assert.Equal(t, 2.3, cfg.InitialEaseFactor, "level beats default")
	assert.Equal(t, 1.3, cfg.MinEaseFactor, "default fills the rest")
}

func TestConfigProvider_Resolve(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserConfigRepository()
	p := services.NewConfigProvider(models.DefaultSRSConfig(), services.DefaultLevelBands(), users)

	require.NoError(t, p.SaveUserConfig(ctx, "u1", models.SRSConfigOverride{PassingGrade: models.Int(4)}))

	cfg, err := p.Resolve(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.PassingGrade)
	assert.Equal(t, 7, cfg.EasyInterval)

	cfg, err = p.Resolve(ctx, "someone-else", 2)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSRSConfig(), cfg)
}

func TestConfigProvider_SaveUserConfigErrors(t *testing.T) {
	ctx := context.Background()
	users := new(mocks.MockUserConfigRepository)
	p := services.NewConfigProvider(models.DefaultSRSConfig(), nil, users)

	err := p.SaveUserConfig(ctx, "u1", models.SRSConfigOverride{MaxInterval: models.Int(0)})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	users.On("Save", ctx, "u1", mock.Anything).Return(stderrors.New("locked"))
	err = p.SaveUserConfig(ctx, "u1", models.SRSConfigOverride{MaxInterval: models.Int(30)})
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigSaveFailed))

	users.On("Get", ctx, "u2").Return(models.SRSConfigOverride{}, stderrors.New("gone"))
	_, err = p.ConfigForUser(ctx, "u2")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInternal))
	users.AssertExpectations(t)
}

func TestConfigProvider_ValidateOverrideCoversBands(t *testing.T) {
	p := newProvider()

	assert.NoError(t, p.ValidateOverride(models.SRSConfigOverride{}))
	assert.NoError(t, p.ValidateOverride(models.SRSConfigOverride{MaxEaseFactor: models.Float(2.8)}))

	err := p.ValidateOverride(models.SRSConfigOverride{MaxEaseFactor: models.Float(2.6)})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

	err = p.SaveUserConfig(context.Background(), "u1", models.SRSConfigOverride{MaxEaseFactor: models.Float(2.6)})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	stored, err := p.ConfigForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, stored.IsEmpty())
}

func TestConfigProvider_SuggestAdjustments(t *testing.T) {
	p := newProvider()

	t.Run("strong performance widens bounds", func(t *testing.T) {
		o := p.SuggestAdjustments(models.LearningMetrics{Accuracy: 0.92, Retention: 0.85, StudyFrequency: 5})
		require.NotNil(t, o.MaxEaseFactor)
		assert.Equal(t, 3.2, *o.MaxEaseFactor)
		require.NotNil(t, o.MaxInterval)
		assert.Equal(t, 438, *o.MaxInterval)
		assert.Nil(t, o.MinEaseFactor)
	})

	t.Run("weak performance narrows bounds", func(t *testing.T) {
		o := p.SuggestAdjustments(models.LearningMetrics{Accuracy: 0.5, Retention: 0.7, StudyFrequency: 5})
		require.NotNil(t, o.MinEaseFactor)
		assert.Equal(t, 1.2, *o.MinEaseFactor)
		require.NotNil(t, o.InitialEaseFactor)
		assert.Equal(t, 2.3, *o.InitialEaseFactor)
		require.NotNil(t, o.MaxInterval)
		assert.Equal(t, 292, *o.MaxInterval)
	})

	t.Run("average performance changes nothing", func(t *testing.T) {
		o := p.SuggestAdjustments(models.LearningMetrics{Accuracy: 0.7, Retention: 0.7, StudyFrequency: 5})
		assert.True(t, o.IsEmpty())
	})

	t.Run("sparse study caps intervals", func(t *testing.T) {
		o := p.SuggestAdjustments(models.LearningMetrics{Accuracy: 0.95, Retention: 0.9, StudyFrequency: 1})
		require.NotNil(t, o.MaxInterval)
		assert.Equal(t, 292, *o.MaxInterval)
		require.NotNil(t, o.MaxEaseFactor)
	})

	t.Run("suggestions validate against defaults", func(t *testing.T) {
		for _, m := range []models.LearningMetrics{
			{Accuracy: 0.95, Retention: 0.95, StudyFrequency: 7},
			{Accuracy: 0.1, Retention: 0.1, StudyFrequency: 0.5},
		} {
			err := p.SaveUserConfig(context.Background(), "tuning", p.SuggestAdjustments(m))
			assert.NoError(t, err)
		}
	})
}
