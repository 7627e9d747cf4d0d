// Package repotest holds contract tests every CardStore back-end must pass.
package repotest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
)

// CardStoreSuite exercises the CardStore contract. NewStore is called
// before every test; Cleanup, when set, after.
type CardStoreSuite struct {
	suite.Suite
	NewStore func() repository.CardStore
	Cleanup  func()
	// Settle, when set, runs after each mutation for stores that apply
	// changes asynchronously.
	Settle func()

	store repository.CardStore
	ctx   context.Context
}

func (s *CardStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore()
}

func (s *CardStoreSuite) TearDownTest() {
	if s.Cleanup != nil {
		s.Cleanup()
	}
}

func (s *CardStoreSuite) settle() {
	if s.Settle != nil {
		s.Settle()
	}
}

func (s *CardStoreSuite) TestRoundTripIsLossless() {
	cards := SampleCards(time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC))

	s.Require().NoError(s.store.Save(s.ctx, "user-1", cards))
	s.settle()

	loaded, err := s.store.Load(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(cards, loaded)
	s.True(loaded[0].Memory.NextReview.Equal(cards[0].Memory.NextReview))
}

func (s *CardStoreSuite) TestMissingKey() {
	loaded, err := s.store.Load(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Nil(loaded)

	exists, err := s.store.Exists(s.ctx, "nobody")
	s.Require().NoError(err)
	s.False(exists)

	modified, err := s.store.LastModified(s.ctx, "nobody")
	s.Require().NoError(err)
	s.True(modified.IsZero())

	size, err := s.store.Size(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Zero(size)

	s.NoError(s.store.Delete(s.ctx, "nobody"))
}

func (s *CardStoreSuite) TestSaveOverwrites() {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.Require().NoError(s.store.Save(s.ctx, "k", SampleCards(now)))
	s.Require().NoError(s.store.Save(s.ctx, "k", SampleCards(now)[:1]))
	s.settle()

	loaded, err := s.store.Load(s.ctx, "k")
	s.Require().NoError(err)
	s.Len(loaded, 1)
}

func (s *CardStoreSuite) TestMetadata() {
	before := time.Now().Add(-time.Second)
	s.Require().NoError(s.store.Save(s.ctx, "k", SampleCards(time.Now().UTC())))
	s.settle()

	exists, err := s.store.Exists(s.ctx, "k")
	s.Require().NoError(err)
	s.True(exists)

	modified, err := s.store.LastModified(s.ctx, "k")
	s.Require().NoError(err)
	s.True(modified.After(before), "last modified %v should be after %v", modified, before)

	size, err := s.store.Size(s.ctx, "k")
	s.Require().NoError(err)
	encoded, err := repository.EncodeCards(SampleCards(time.Now().UTC()))
	s.Require().NoError(err)
	s.Equal(int64(len(encoded)), size)
}

func (s *CardStoreSuite) TestDeleteAndClear() {
	now := time.Now().UTC()
	s.Require().NoError(s.store.Save(s.ctx, "a", SampleCards(now)))
	s.Require().NoError(s.store.Save(s.ctx, "b", SampleCards(now)))
	s.Require().NoError(s.store.Delete(s.ctx, "a"))
	s.settle()

	exists, err := s.store.Exists(s.ctx, "a")
	s.Require().NoError(err)
	s.False(exists)
	exists, err = s.store.Exists(s.ctx, "b")
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(s.store.Clear(s.ctx))
	s.settle()
	exists, err = s.store.Exists(s.ctx, "b")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *CardStoreSuite) TestEmptySetIsNotMissing() {
	s.Require().NoError(s.store.Save(s.ctx, "empty", []models.ReviewCard{}))
	s.settle()

	exists, err := s.store.Exists(s.ctx, "empty")
	s.Require().NoError(err)
	s.True(exists)

	loaded, err := s.store.Load(s.ctx, "empty")
	s.Require().NoError(err)
	s.NotNil(loaded)
	s.Empty(loaded)
}

// SampleCards returns two cards in different states anchored at now.
func SampleCards(now time.Time) []models.ReviewCard {
	return []models.ReviewCard{
		{
			ID: "0b6b2c52-5d1e-4c61-9a53-1f1a8c2c0a01",
			Content: models.CardContent{
				SourceText: "the cat",
				TargetText: "el gato",
				Level:      1,
				Stage:      2,
				Pattern:    "articles",
			},
			Memory: models.MemoryState{
				Strength:     0.72,
				EaseFactor:   2.36,
				Interval:     6,
				ReviewCount:  2,
				LastReviewed: now.Add(-6 * 24 * time.Hour),
				NextReview:   now,
				Difficulty:   0.25,
			},
			Performance: models.Performance{
				Accuracy:     []int{1, 0, 1},
				ResponseTime: []int64{4200, 9100, 3800},
				Streak:       1,
				Mistakes:     1,
			},
			State:     models.CardStateReviewing,
			CreatedAt: now.Add(-30 * 24 * time.Hour),
			// mastered once, then lapsed
			MasteredAt: now.Add(-10*24*time.Hour + 123456789),
		},
		{
			ID: "0b6b2c52-5d1e-4c61-9a53-1f1a8c2c0a02",
			Content: models.CardContent{
				SourceText: "to run",
				TargetText: "correr",
			},
			Memory: models.MemoryState{
				Strength:   0.3,
				EaseFactor: 2.5,
				Interval:   1,
				NextReview: now.Add(24 * time.Hour),
			},
			State:     models.CardStateNew,
			CreatedAt: now,
		},
	}
}
