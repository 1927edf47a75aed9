package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OpenSessionRequest opens a service session for a table.
type OpenSessionRequest struct {
	OpenedBy string `json:"opened_by"`
}

func (r *OpenSessionRequest) Validate() error {
	if r.OpenedBy == "" {
		return fmt.Errorf("opened_by: %w", ErrMissingReference)
	}
	return nil
}

// CreateOrderRequest creates a new OPEN order, either bound to a table
// session or staff-entered with no table.
type CreateOrderRequest struct {
	SessionID *string `json:"session_id,omitempty"`
	CreatedBy string  `json:"created_by"`
}

func (r *CreateOrderRequest) Validate() error {
	if r.CreatedBy == "" {
		return fmt.Errorf("created_by: %w", ErrMissingReference)
	}
	return nil
}

// AddItemRequest appends a line item to an order. The menu item is looked up
// in the catalog and snapshotted.
type AddItemRequest struct {
	MenuItemID int      `json:"menu_item_id"`
	Quantity   int      `json:"quantity"`
	Options    []string `json:"options,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	AddedBy    string   `json:"added_by"`
}

func (r *AddItemRequest) Validate() error {
	if r.MenuItemID <= 0 {
		return fmt.Errorf("menu_item_id: %w", ErrMissingReference)
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if len(r.Notes) > 255 {
		return fmt.Errorf("notes must not exceed 255 characters")
	}
	return nil
}

// SetItemStatusRequest advances an item through the kitchen lifecycle.
type SetItemStatusRequest struct {
	Status    ItemStatus `json:"status"`
	ChangedBy string     `json:"changed_by"`
}

func (r *SetItemStatusRequest) Validate() error {
	switch r.Status {
	case ItemCooking, ItemReady, ItemServed, ItemVoid:
	default:
		return fmt.Errorf("status must be one of: cooking, ready, served, void")
	}
	if r.ChangedBy == "" {
		return fmt.Errorf("changed_by: %w", ErrMissingReference)
	}
	return nil
}

// VoidItemRequest voids a not-yet-served item with a reason.
type VoidItemRequest struct {
	Reason   string `json:"reason"`
	VoidedBy string `json:"voided_by"`
}

func (r *VoidItemRequest) Validate() error {
	if r.Reason == "" {
		return ErrVoidReasonRequired
	}
	if r.VoidedBy == "" {
		return fmt.Errorf("voided_by: %w", ErrMissingReference)
	}
	return nil
}

// DiscountRequest replaces the order's discount amount.
type DiscountRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	AppliedBy string          `json:"applied_by"`
}

func (r *DiscountRequest) Validate() error {
	if r.Amount.IsNegative() {
		return ErrNonPositiveAmount
	}
	if r.AppliedBy == "" {
		return fmt.Errorf("applied_by: %w", ErrMissingReference)
	}
	return nil
}

// CancelOrderRequest cancels a pre-billed order.
type CancelOrderRequest struct {
	Reason      string `json:"reason"`
	CancelledBy string `json:"cancelled_by"`
}

func (r *CancelOrderRequest) Validate() error {
	if r.Reason == "" {
		return ErrVoidReasonRequired
	}
	if r.CancelledBy == "" {
		return fmt.Errorf("cancelled_by: %w", ErrMissingReference)
	}
	return nil
}

// PaymentRequest records funds received against a bill.
type PaymentRequest struct {
	Method     PaymentMethod   `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  *string         `json:"reference,omitempty"`
	ReceivedBy string          `json:"received_by"`
}

func (r *PaymentRequest) Validate() error {
	if !ValidPaymentMethod(r.Method) {
		return fmt.Errorf("method must be one of: cash, card, qr, transfer")
	}
	if !r.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if r.ReceivedBy == "" {
		return fmt.Errorf("received_by: %w", ErrMissingReference)
	}
	return nil
}
