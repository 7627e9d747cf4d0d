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

type cardStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewCardStore creates a CardStore backed by the card_sets table. Each
// card set is stored as one JSON payload; card_index mirrors the
// scheduling columns of every card for DueCount.
func NewCardStore(db *sql.DB) repository.CardStore {
	return &cardStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *cardStore) Save(ctx context.Context, key string, cards []models.ReviewCard) error {
	log := logger.FromContext(ctx).WithPrefix("card_store")
	log.Debug("saving card set: key=%s, cards=%d", key, len(cards))

	payload, err := repository.EncodeCards(cards)
	if err != nil {
		return err
	}

	upsert, args, err := sqlBuilder.Insert("card_sets").
		Columns("key", "payload", "card_count", "updated_at").
		Values(key, payload, len(cards), toUnixNano(s.now())).
		Suffix("ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, card_count = excluded.card_count, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build card set upsert: %w", err)
	}

	err = tx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsert, args...); err != nil {
			return fmt.Errorf("upsert card set %s: %w", key, err)
		}
		if err := deleteIndex(ctx, tx, key); err != nil {
			return err
		}
		return insertIndex(ctx, tx, key, cards)
	})
	if err != nil {
		log.Error("failed to save card set: key=%s: %v", key, err)
	}
	return err
}

func deleteIndex(ctx context.Context, tx *sql.Tx, key string) error {
	query, args, err := sqlBuilder.Delete("card_index").Where(squirrel.Eq{"set_key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build card index delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete card index %s: %w", key, err)
	}
	return nil
}

// indexBatchSize keeps each insert well below SQLite's bound variable limit
// (5 variables per row).
const indexBatchSize = 500

func insertIndex(ctx context.Context, tx *sql.Tx, key string, cards []models.ReviewCard) error {
	for start := 0; start < len(cards); start += indexBatchSize {
		end := min(start+indexBatchSize, len(cards))
		insert := sqlBuilder.Insert("card_index").
			Columns("set_key", "card_id", "state", "next_review", "ease_factor").
			Options("OR REPLACE")
		for _, c := range cards[start:end] {
			insert = insert.Values(key, c.ID, string(c.State), toUnixNano(c.Memory.NextReview), c.Memory.EaseFactor)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build card index insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert card index %s: %w", key, err)
		}
	}
	return nil
}

func (s *cardStore) Load(ctx context.Context, key string) ([]models.ReviewCard, error) {
	log := logger.FromContext(ctx).WithPrefix("card_store")
	log.Debug("loading card set: key=%s", key)

	query, args, err := sqlBuilder.Select("payload").From("card_sets").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build card set select: %w", err)
	}

	var payload []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card set not found: key=%s", key)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load card set: key=%s: %v", key, err)
		return nil, fmt.Errorf("load card set %s: %w", key, err)
	}
	return repository.DecodeCards(payload)
}

func (s *cardStore) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("card_store")
	log.Debug("deleting card set: key=%s", key)

	query, args, err := sqlBuilder.Delete("card_sets").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build card set delete: %w", err)
	}
	return tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := deleteIndex(ctx, tx, key); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete card set %s: %w", key, err)
		}
		return nil
	})
}

func (s *cardStore) Clear(ctx context.Context) error {
	logger.FromContext(ctx).WithPrefix("card_store").Info("clearing all card sets")
	return tx(ctx, s.db, func(tx *sql.Tx) error {
		for _, table := range []string{"card_index", "card_sets"} {
			query, args, err := sqlBuilder.Delete(table).ToSql()
			if err != nil {
				return fmt.Errorf("build %s delete: %w", table, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *cardStore) Exists(ctx context.Context, key string) (bool, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").From("card_sets").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build card set count: %w", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("count card set %s: %w", key, err)
	}
	return count > 0, nil
}

func (s *cardStore) LastModified(ctx context.Context, key string) (time.Time, error) {
	query, args, err := sqlBuilder.Select("updated_at").From("card_sets").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("build card set select: %w", err)
	}
	var updatedAt int64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read modification time %s: %w", key, err)
	}
	return fromUnixNano(updatedAt), nil
}

func (s *cardStore) Size(ctx context.Context, key string) (int64, error) {
	query, args, err := sqlBuilder.Select("length(payload)").From("card_sets").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build card set size: %w", err)
	}
	var size int64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read size %s: %w", key, err)
	}
	return size, nil
}

// DueCount counts cards in a set whose next review is at or before at.
func (s *cardStore) DueCount(ctx context.Context, key string, at time.Time) (int, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").From("card_index").
		Where(squirrel.Eq{"set_key": key}).
		Where(squirrel.LtOrEq{"next_review": toUnixNano(at)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build due count: %w", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		logger.FromContext(ctx).WithPrefix("card_store").Error("failed to count due cards: key=%s: %v", key, err)
		return 0, fmt.Errorf("count due cards %s: %w", key, err)
	}
	return count, nil
}
