package services

import (
	"context"

	"pod-tracker-api/models"
)

// LiveChannel is the redis pub/sub channel carrying all live events.
const LiveChannel = "podtracker:live"

// Event names delivered on the live channel.
const (
	EventPodUpdated      = "pod-updated"
	EventReportSubmitted = "report-submitted"
	EventUsage           = "usage"
)

// Publisher is the notification contract: deliver an event to everyone
// currently listening, at most once, no replay for late subscribers.
type Publisher interface {
	Publish(ctx context.Context, event string, payload interface{}) error
}

// Bus broadcasts events over the redis live channel. Observers that connect
// after a publish never see it; delivery is fire-and-forget.
type Bus struct {
	cache *CacheService
}

func NewBus(cache *CacheService) *Bus {
	return &Bus{cache: cache}
}

func (b *Bus) Publish(ctx context.Context, event string, payload interface{}) error {
	err := b.cache.Publish(ctx, LiveChannel, models.Envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	eventsPublished.Inc()
	return nil
}
