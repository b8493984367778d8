package session

import (
	"sync/atomic"
	"time"

	"github.com/zeusync/haptics/internal/core/events/bus"
	"github.com/zeusync/haptics/internal/core/observability/log"
)

// busObserver counts bus traffic by kind, logs device lifecycle events and
// warns on failed deliveries.
type busObserver struct {
	collisions atomic.Uint64
	lifecycle  atomic.Uint64
	logger     log.Log
}

func (o *busObserver) OnPublish(topic, eventType string, event bus.Event) {
	switch eventType {
	case bus.EventCollisionBegin, bus.EventCollisionEnd:
		o.collisions.Add(1)
	case bus.EventDeviceAttached, bus.EventDeviceReleased:
		o.lifecycle.Add(1)
		if p, ok := event.Data().(bus.DevicePayload); ok {
			o.logger.Debug("Device lifecycle",
				log.String("event", eventType),
				log.Int("index", p.Index),
				log.String("device_id", p.ID))
		}
	}
}

func (o *busObserver) OnDelivered(topic, eventType string, handlers int, err error, _ time.Duration) {
	if err == nil {
		return
	}
	o.logger.Warn("Bus delivery failed",
		log.String("topic", topic),
		log.String("event", eventType),
		log.Int("handlers", handlers),
		log.Error(err))
}
