package audit

import (
	"context"
	"fmt"
	"time"

	"dinehall/internal/logger"
	"dinehall/internal/messaging"
	"dinehall/internal/models"
)

// Emitter publishes audit events without blocking the caller.
type Emitter interface {
	Emit(event models.AuditEvent)
	Close()
}

// AsyncEmitter buffers events and publishes them from a background goroutine.
// When the buffer is full or the broker is down the event is dropped and
// logged; business operations never fail because of auditing.
type AsyncEmitter struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
	events    chan models.AuditEvent
	done      chan struct{}
}

// NewAsyncEmitter creates an emitter with the given buffer size and starts
// its dispatch loop.
func NewAsyncEmitter(publisher *messaging.Publisher, log *logger.Logger, buffer int) *AsyncEmitter {
	if buffer <= 0 {
		buffer = 256
	}
	e := &AsyncEmitter{
		publisher: publisher,
		logger:    log,
		events:    make(chan models.AuditEvent, buffer),
		done:      make(chan struct{}),
	}
	go e.dispatch()
	return e
}

// Emit enqueues an event for publishing. It never blocks.
func (e *AsyncEmitter) Emit(event models.AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case e.events <- event:
	default:
		e.logger.Error("audit_event_dropped",
			"Audit buffer full, dropping event",
			"", nil, map[string]interface{}{
				"action":      event.Action,
				"entity_type": event.EntityType,
				"entity_id":   event.EntityID,
			})
	}
}

// Close stops the dispatch loop after draining buffered events.
func (e *AsyncEmitter) Close() {
	close(e.events)
	<-e.done
}

func (e *AsyncEmitter) dispatch() {
	defer close(e.done)

	for event := range e.events {
		routingKey := fmt.Sprintf("audit.%s.%s", event.EntityType, event.Action)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := e.publisher.PublishAudit(ctx, event, routingKey)
		cancel()

		if err != nil {
			e.logger.Error("audit_publish_failed",
				"Failed to publish audit event",
				"", err, map[string]interface{}{
					"routing_key": routingKey,
					"action":      event.Action,
					"entity_type": event.EntityType,
					"entity_id":   event.EntityID,
				})
		}
	}
}

// NopEmitter discards all events. Used when auditing is disabled and in tests.
type NopEmitter struct{}

func (NopEmitter) Emit(models.AuditEvent) {}
func (NopEmitter) Close()                 {}
