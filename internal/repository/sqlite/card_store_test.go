package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
	"github.com/vytor/drillflash/internal/repository/repotest"
	"github.com/vytor/drillflash/internal/repository/sqlite"
	"github.com/vytor/drillflash/internal/testutil"
)

func TestCardStoreContract(t *testing.T) {
	var db *sql.DB
	suite.Run(t, &repotest.CardStoreSuite{
		NewStore: func() repository.CardStore {
			db = testutil.NewTestDB(t)
			return sqlite.NewCardStore(db)
		},
		Cleanup: func() { testutil.MustClose(t, db) },
	})
}

type CardStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store repository.CardStore
}

func (s *CardStoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewCardStore(s.db)
}

func (s *CardStoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CardStoreSuite) TestDueCount() {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Save(ctx, "user-1", repotest.SampleCards(now)))

	counter, ok := s.store.(repository.DueCounter)
	s.Require().True(ok, "sqlite store should count due cards")

	due, err := counter.DueCount(ctx, "user-1", now)
	s.Require().NoError(err)
	s.Equal(1, due)

	due, err = counter.DueCount(ctx, "user-1", now.Add(48*time.Hour))
	s.Require().NoError(err)
	s.Equal(2, due)

	due, err = counter.DueCount(ctx, "other", now)
	s.Require().NoError(err)
	s.Zero(due)
}

func (s *CardStoreSuite) TestIndexFollowsSaveAndDelete() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Require().NoError(s.store.Save(ctx, "user-1", repotest.SampleCards(now)))
	s.Require().NoError(s.store.Save(ctx, "user-1", repotest.SampleCards(now)[:1]))

	var indexed int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM card_index WHERE set_key = ?`, "user-1").Scan(&indexed))
	s.Equal(1, indexed)

	var count int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT card_count FROM card_sets WHERE key = ?`, "user-1").Scan(&count))
	s.Equal(1, count)

	s.Require().NoError(s.store.Delete(ctx, "user-1"))
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM card_index`).Scan(&indexed))
	s.Zero(indexed)
}

func (s *CardStoreSuite) TestIndexedState() {
	ctx := context.Background()
	cards := repotest.SampleCards(time.Now().UTC())
	s.Require().NoError(s.store.Save(ctx, "user-1", cards))

	var state string
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT state FROM card_index WHERE card_id = ?`, cards[0].ID).Scan(&state))
	s.Equal(string(models.CardStateReviewing), state)
}

func (s *CardStoreSuite) TestLargeCardSet() {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	const total = 7000

	cards := make([]models.ReviewCard, total)
	for i := range cards {
		next := now.Add(-time.Hour)
		if i%2 == 1 {
			next = now.Add(24 * time.Hour)
		}
		cards[i] = models.ReviewCard{
			ID:        fmt.Sprintf("card-%05d", i),
			Content:   models.CardContent{SourceText: "word", TargetText: "palabra"},
			Memory:    models.MemoryState{Strength: 0.5, EaseFactor: 2.5, Interval: 1, NextReview: next},
			State:     models.CardStateLearning,
			CreatedAt: now,
		}
	}
	s.Require().NoError(s.store.Save(ctx, "veteran", cards))

	loaded, err := s.store.Load(ctx, "veteran")
	s.Require().NoError(err)
	s.Len(loaded, total)

	var indexed int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM card_index WHERE set_key = ?`, "veteran").Scan(&indexed))
	s.Equal(total, indexed)

	due, err := s.store.(repository.DueCounter).DueCount(ctx, "veteran", now)
	s.Require().NoError(err)
	s.Equal(total/2, due)
}

func TestCardStoreSuite(t *testing.T) {
	suite.Run(t, new(CardStoreSuite))
}
