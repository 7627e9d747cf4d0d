package repository

import (
	"context"
	"time"

	"github.com/vytor/drillflash/internal/models"
)

// CardStore persists the full card set of a user under an opaque key.
// Missing keys are not errors: Load returns nil, Exists false,
// LastModified the zero time and Size 0.
type CardStore interface {
	Save(ctx context.Context, key string, cards []models.ReviewCard) error
	Load(ctx context.Context, key string) ([]models.ReviewCard, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Exists(ctx context.Context, key string) (bool, error)
	LastModified(ctx context.Context, key string) (time.Time, error)
	// Size returns the number of bytes the serialized card set occupies.
	Size(ctx context.Context, key string) (int64, error)
}

// UserConfigRepository persists per-user SRS overrides.
type UserConfigRepository interface {
	// Get returns an empty override when the user has none.
	Get(ctx context.Context, userID string) (models.SRSConfigOverride, error)
	Save(ctx context.Context, userID string, override models.SRSConfigOverride) error
}

// DueCounter is implemented by stores that index scheduling columns and can
// count due cards without decoding a card set.
type DueCounter interface {
	DueCount(ctx context.Context, key string, at time.Time) (int, error)
}
