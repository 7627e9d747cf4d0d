package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository/memory"
	"github.com/vytor/drillflash/internal/repository/repotest"
)

func TestCardStoreContract(t *testing.T) {
	suite.Run(t, &repotest.CardStoreSuite{NewStore: memory.NewCardStore})
}

func TestCardStore_LoadReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCardStore()
	require.NoError(t, store.Save(ctx, "k", repotest.SampleCards(time.Now().UTC())))

	first, err := store.Load(ctx, "k")
	require.NoError(t, err)
	first[0].Performance.Accuracy[0] = 42
	first[0].Content.SourceText = "mutated"

	second, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, second[0].Performance.Accuracy[0])
	assert.Equal(t, "the cat", second[0].Content.SourceText)
}

func TestUserConfigRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserConfigRepository()

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	ease := 2.1
	require.NoError(t, repo.Save(ctx, "u1", models.SRSConfigOverride{InitialEaseFactor: models.Float(ease)}))

	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.InitialEaseFactor)
	assert.Equal(t, ease, *got.InitialEaseFactor)
}
