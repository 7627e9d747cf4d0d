package events

import (
	"github.com/vytor/drillflash/internal/logger"
	"github.com/vytor/drillflash/internal/models"
)

// AllTypes lists every event the scheduler emits.
var AllTypes = []models.EventType{
	models.EventCardCreated,
	models.EventCardReviewed,
	models.EventCardMastered,
	models.EventSessionCompleted,
	models.EventConfigUpdated,
	models.EventConfigUpdateFailed,
}

// LogHandler writes each event to log. Failures are logged at WARN.
func LogHandler(log *logger.Logger) Handler {
	log = log.WithPrefix("telemetry")
	return func(e models.Event) error {
		if e.Type == models.EventConfigUpdateFailed {
			log.Warn("event %s at %s: %v", e.Type, e.Timestamp.Format("15:04:05.000"), e.Data)
			return nil
		}
		log.Info("event %s at %s: %v", e.Type, e.Timestamp.Format("15:04:05.000"), e.Data)
		return nil
	}
}

// Counter tallies events by type. Not safe for concurrent emitters.
type Counter map[models.EventType]int

// Handler returns a Handler that increments the counter.
func (c Counter) Handler() Handler {
	return func(e models.Event) error {
		c[e.Type]++
		return nil
	}
}

// Subscribe registers h for every scheduler event type.
func Subscribe(b *Bus, h Handler) []ListenerID {
	ids := make([]ListenerID, 0, len(AllTypes))
	for _, t := range AllTypes {
		ids = append(ids, b.On(t, h))
	}
	return ids
}
