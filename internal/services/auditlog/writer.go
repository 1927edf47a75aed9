// Package auditlog persists audit events consumed from the broker into the
// append-only audit_log table.
package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dinehall/internal/database"
	"dinehall/internal/logger"
	"dinehall/internal/messaging"
	"dinehall/internal/models"
)

// Writer consumes audit events and writes them to the database.
type Writer struct {
	db       *database.DB
	consumer *messaging.Consumer
	logger   *logger.Logger
}

func NewWriter(db *database.DB, conn *messaging.Connection, log *logger.Logger, prefetch int) *Writer {
	consumer := messaging.NewConsumer(conn, log, messaging.AuditQueue, "audit-writer", prefetch)
	return &Writer{
		db:       db,
		consumer: consumer,
		logger:   log,
	}
}

// Run consumes until the context is cancelled.
func (w *Writer) Run(ctx context.Context) error {
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

func (w *Writer) handleMessage(ctx context.Context, body []byte) error {
	var event models.AuditEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// Malformed events are logged and acked; requeueing cannot fix them.
		w.logger.Error("audit_event_malformed", "Dropping malformed audit event", "", err, map[string]interface{}{
			"body": string(body),
		})
		return nil
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payloadJSON, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	err = w.db.Exec(ctx, database.InsertAuditEventSQL,
		event.Actor, event.Action, event.EntityType, event.EntityID, payloadJSON, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}

	w.logger.Debug("audit_event_stored", "Stored audit event", "", map[string]interface{}{
		"action":      event.Action,
		"entity_type": event.EntityType,
		"entity_id":   event.EntityID,
	})
	return nil
}

// Close stops the consumer.
func (w *Writer) Close() error {
	return w.consumer.Close()
}
