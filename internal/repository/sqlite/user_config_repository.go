package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/drillflash/internal/logger"
	"github.com/vytor/drillflash/internal/models"
	"github.com/vytor/drillflash/internal/repository"
)

type userConfigRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserConfigRepository creates a UserConfigRepository implementation.
// Overrides are stored as JSON keyed by user id.
func NewUserConfigRepository(db *sql.DB) repository.UserConfigRepository {
	return &userConfigRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *userConfigRepository) Get(ctx context.Context, userID string) (models.SRSConfigOverride, error) {
	log := logger.FromContext(ctx).WithPrefix("user_config_repo")
	log.Debug("fetching config override: user_id=%s", userID)

	query, args, err := sqlBuilder.Select("payload").From("user_configs").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return models.SRSConfigOverride{}, fmt.Errorf("build user config select: %w", err)
	}

	var payload string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SRSConfigOverride{}, nil
	}
	if err != nil {
		log.Error("failed to fetch config override: %v", err)
		return models.SRSConfigOverride{}, fmt.Errorf("get user config %s: %w", userID, err)
	}
	return repository.DecodeOverride([]byte(payload))
}

func (r *userConfigRepository) Save(ctx context.Context, userID string, override models.SRSConfigOverride) error {
	log := logger.FromContext(ctx).WithPrefix("user_config_repo")
	log.Debug("saving config override: user_id=%s", userID)

	payload, err := repository.EncodeOverride(override)
	if err != nil {
		return err
	}
	query, args, err := sqlBuilder.Insert("user_configs").
		Columns("user_id", "payload", "updated_at").
		Values(userID, string(payload), toUnixNano(r.now())).
		Suffix("ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build user config upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to save config override: %v", err)
		return fmt.Errorf("save user config %s: %w", userID, err)
	}
	return nil
}
