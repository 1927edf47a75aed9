package models

import "time"

// AuditEvent records one state transition for compliance. Events are
// delivered best-effort over the audit exchange; the core never reads them
// back.
type AuditEvent struct {
	Actor      string                 `json:"actor"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Audit actions emitted by the engine.
const (
	AuditOrderCreated    = "order_created"
	AuditOrderSubmitted  = "order_submitted"
	AuditOrderCancelled  = "order_cancelled"
	AuditOrderStatus     = "order_status_changed"
	AuditItemAdded       = "item_added"
	AuditItemStatus      = "item_status_changed"
	AuditItemVoided      = "item_voided"
	AuditDiscountApplied = "discount_applied"
	AuditBillCreated     = "bill_created"
	AuditBillVoided      = "bill_voided"
	AuditBillSettled     = "bill_settled"
	AuditPaymentRecorded = "payment_recorded"
	AuditSessionOpened   = "session_opened"
	AuditSessionClosed   = "session_closed"
)
