package models

import "errors"

// Validation errors: malformed input rejected before any mutation.
var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrNonPositiveAmount  = errors.New("amount must be positive")
	ErrMissingReference   = errors.New("missing entity reference")
	ErrVoidReasonRequired = errors.New("void reason is required")
)

// State-conflict errors: the transition is not permitted from the current
// status. Each names the violated rule.
var (
	ErrOrderNotMutable         = errors.New("order is no longer mutable")
	ErrInvalidItemTransition   = errors.New("item status transition not permitted")
	ErrInvalidOrderTransition  = errors.New("order status transition not permitted")
	ErrItemAlreadyServed       = errors.New("item has already been served")
	ErrEmptyOrder              = errors.New("order has no non-void items")
	ErrDiscountExceedsSubtotal = errors.New("discount exceeds order subtotal")
	ErrOrderNotReady           = errors.New("order is not fully served")
	ErrBillAlreadyExists       = errors.New("an active bill already exists for this order")
	ErrBillNotPayable          = errors.New("bill is not payable")
	ErrBillHasPayments         = errors.New("bill has recorded payments")
	ErrOverpaymentNotAllowed   = errors.New("payment would exceed the bill grand total")
	ErrTableAlreadyOccupied    = errors.New("table already has an open session")
	ErrSessionOrderActive      = errors.New("session already has an active order")
	ErrSessionNotClosable      = errors.New("session order has not reached a terminal status")
)

// Contention: the per-order lock could not be acquired in time. Safe to retry.
var ErrOrderBusy = errors.New("order is busy, retry")

// Collaborator errors.
var (
	ErrMenuItemUnavailable = errors.New("menu item is unavailable")
	ErrNotFound            = errors.New("not found")
)
