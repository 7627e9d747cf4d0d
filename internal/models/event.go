package models

import "time"

// EventType names a scheduler lifecycle event.
type EventType string

const (
	EventCardCreated        EventType = "card_created"
	EventCardReviewed       EventType = "card_reviewed"
	EventCardMastered       EventType = "card_mastered"
	EventSessionCompleted   EventType = "session_completed"
	EventConfigUpdated      EventType = "config_updated"
	EventConfigUpdateFailed EventType = "config_update_failed"
)

type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}
