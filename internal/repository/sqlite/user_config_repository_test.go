package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
	"github.com/vytor/drillflash/internal/repository/sqlite"
	"github.com/vytor/drillflash/internal/testutil"
)

type UserConfigRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.UserConfigRepository
}

func (s *UserConfigRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewUserConfigRepository(s.db)
}

func (s *UserConfigRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *UserConfigRepositorySuite) TestGetMissingUser() {
	override, err := s.repo.Get(context.Background(), "ghost")
	s.Require().NoError(err)
	s.True(override.IsEmpty())
}

func (s *UserConfigRepositorySuite) TestSaveAndGet() {
	ctx := context.Background()
	override := models.SRSConfigOverride{
		MaxEaseFactor: models.Float(2.8),
		MaxInterval:   models.Int(180),
		LearningSteps: []time.Duration{5 * time.Minute},
	}
	s.Require().NoError(s.repo.Save(ctx, "u1", override))

	got, err := s.repo.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(override, got)
	s.Nil(got.MinEaseFactor)
}

func (s *UserConfigRepositorySuite) TestSaveReplaces() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Save(ctx, "u1", models.SRSConfigOverride{MaxInterval: models.Int(180)}))
	s.Require().NoError(s.repo.Save(ctx, "u1", models.SRSConfigOverride{PassingGrade: models.Int(4)}))

	got, err := s.repo.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Nil(got.MaxInterval)
	s.Require().NotNil(got.PassingGrade)
	s.Equal(4, *got.PassingGrade)

	var rows int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_configs`).Scan(&rows))
	s.Equal(1, rows)
}

func TestUserConfigRepositorySuite(t *testing.T) {
	suite.Run(t, new(UserConfigRepositorySuite))
}
