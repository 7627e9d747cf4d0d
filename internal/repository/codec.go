package repository

import (
	"encoding/json"
	"fmt"

	"github.com/vytor/drillflash/internal/models"
)

// EncodeCards serializes a card set for storage.
func EncodeCards(cards []models.ReviewCard) ([]byte, error) {
	b, err := json.Marshal(cards)
	if err != nil {
		return nil, fmt.Errorf("encode cards: %w", err)
	}
	return b, nil
}

// DecodeCards is the inverse of EncodeCards.
func DecodeCards(b []byte) ([]models.ReviewCard, error) {
	var cards []models.ReviewCard
	if err := json.Unmarshal(b, &cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	return cards, nil
}

// EncodeOverride serializes a user override. Unset fields are omitted.
func EncodeOverride(o models.SRSConfigOverride) ([]byte, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("encode config override: %w", err)
	}
	return b, nil
}

// DecodeOverride is the inverse of EncodeOverride.
func DecodeOverride(b []byte) (models.SRSConfigOverride, error) {
	var o models.SRSConfigOverride
	if err := json.Unmarshal(b, &o); err != nil {
		return o, fmt.Errorf("decode config override: %w", err)
	}
	return o, nil
}
