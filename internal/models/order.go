package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dinehall/internal/money"
)

// OrderChannel records how an order entered the system
type OrderChannel string

const (
	ChannelTable OrderChannel = "table"
	ChannelStaff OrderChannel = "staff"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderOpen         OrderStatus = "open"
	OrderSubmitted    OrderStatus = "submitted"
	OrderPartialReady OrderStatus = "partial_ready"
	OrderReady        OrderStatus = "ready"
	OrderServed       OrderStatus = "served"
	OrderBilled       OrderStatus = "billed"
	OrderPaid         OrderStatus = "paid"
	OrderCancelled    OrderStatus = "cancelled"
)

// orderRank orders the forward path of the status machine. CANCELLED sits
// outside the path and is handled explicitly.
var orderRank = map[OrderStatus]int{
	OrderOpen:         0,
	OrderSubmitted:    1,
	OrderPartialReady: 2,
	OrderReady:        3,
	OrderServed:       4,
	OrderBilled:       5,
	OrderPaid:         6,
}

// ItemStatus represents the kitchen-readiness status of an order item
type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemCooking ItemStatus = "cooking"
	ItemReady   ItemStatus = "ready"
	ItemServed  ItemStatus = "served"
	ItemVoid    ItemStatus = "void"
)

// itemTransitions is the per-item transition table:
// PENDING -> COOKING -> READY -> SERVED, plus PENDING|COOKING -> VOID.
var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemPending: {ItemCooking, ItemVoid},
	ItemCooking: {ItemReady, ItemVoid},
	ItemReady:   {ItemServed},
}

// CanTransition reports whether the item may move from s to next.
func (s ItemStatus) CanTransition(next ItemStatus) bool {
	for _, allowed := range itemTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the item status admits no further transitions.
func (s ItemStatus) Terminal() bool {
	return s == ItemServed || s == ItemVoid
}

// SelectedOption is one menu option chosen for an item, with the surcharge
// snapshotted from the catalog at add time.
type SelectedOption struct {
	Name      string          `json:"name"`
	Surcharge decimal.Decimal `json:"surcharge"`
}

// OrderItem is one line of an order. Name, unit price and option surcharges
// are snapshots captured when the item was added; later catalog changes never
// touch them.
type OrderItem struct {
	ID         int              `json:"id,omitempty" db:"id"`
	OrderID    int              `json:"order_id,omitempty" db:"order_id"`
	MenuItemID int              `json:"menu_item_id" db:"menu_item_id"`
	Name       string           `json:"name" db:"name"`
	Quantity   int              `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal  `json:"unit_price" db:"unit_price"`
	Options    []SelectedOption `json:"options,omitempty"`
	Notes      string           `json:"notes,omitempty" db:"notes"`
	Status     ItemStatus       `json:"status" db:"status"`
	LineTotal  decimal.Decimal  `json:"line_total" db:"line_total"`
	Printed    bool             `json:"printed" db:"printed"`
	VoidReason *string          `json:"void_reason,omitempty" db:"void_reason"`
}

// OptionSurcharge sums the snapshotted surcharges of the selected options.
func (i *OrderItem) OptionSurcharge() decimal.Decimal {
	total := money.Zero
	for _, opt := range i.Options {
		total = total.Add(opt.Surcharge)
	}
	return total
}

// ComputeLineTotal recomputes the line total from the snapshot fields only.
func (i *OrderItem) ComputeLineTotal() {
	i.LineTotal = money.Line(i.UnitPrice, i.Quantity, i.OptionSurcharge())
}

// Order is a table or staff-entered tab aggregating order items through to
// settlement. Monetary fields are derived, never edited independently.
type Order struct {
	ID               int             `json:"id,omitempty" db:"id"`
	Number           string          `json:"order_number" db:"number"`
	TableID          *int            `json:"table_id,omitempty" db:"table_id"`
	Channel          OrderChannel    `json:"channel" db:"channel"`
	Status           OrderStatus     `json:"status" db:"status"`
	Items            []OrderItem     `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal" db:"subtotal"`
	ServiceChargePct decimal.Decimal `json:"service_charge_pct" db:"service_charge_pct"`
	ServiceChargeAmt decimal.Decimal `json:"service_charge_amt" db:"service_charge_amt"`
	VATPct           decimal.Decimal `json:"vat_pct" db:"vat_pct"`
	VATAmt           decimal.Decimal `json:"vat_amt" db:"vat_amt"`
	DiscountAmt      decimal.Decimal `json:"discount_amt" db:"discount_amt"`
	GrandTotal       decimal.Decimal `json:"grand_total" db:"grand_total"`
	CreatedBy        string          `json:"created_by" db:"created_by"`
	CancelReason     *string         `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CreatedAt        time.Time       `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at,omitempty" db:"updated_at"`
}

// Mutable reports whether items and discounts may still change. An order is
// frozen once billed, paid or cancelled.
func (o *Order) Mutable() bool {
	switch o.Status {
	case OrderBilled, OrderPaid, OrderCancelled:
		return false
	}
	return true
}

// Terminal reports whether the order reached PAID or CANCELLED.
func (o *Order) Terminal() bool {
	return o.Status == OrderPaid || o.Status == OrderCancelled
}

// ActiveItems returns the non-void items.
func (o *Order) ActiveItems() []*OrderItem {
	var items []*OrderItem
	for idx := range o.Items {
		if o.Items[idx].Status != ItemVoid {
			items = append(items, &o.Items[idx])
		}
	}
	return items
}

// FindItem returns the item with the given id.
func (o *Order) FindItem(itemID int) (*OrderItem, error) {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx], nil
		}
	}
	return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
}

// Recompute rebuilds the monetary fields from the current non-void item set.
func (o *Order) Recompute() {
	subtotal := money.Zero
	for _, item := range o.ActiveItems() {
		subtotal = subtotal.Add(item.LineTotal)
	}
	totals := money.Compute(subtotal, o.ServiceChargePct, o.VATPct, o.DiscountAmt)
	o.Subtotal = totals.Subtotal
	o.ServiceChargeAmt = totals.ServiceCharge
	o.VATAmt = totals.VAT
	o.GrandTotal = totals.GrandTotal
}

// DeriveReadiness returns the readiness status implied by the current item
// set, for orders at or past SUBMITTED and before SERVED.
func (o *Order) DeriveReadiness() OrderStatus {
	active := o.ActiveItems()
	if len(active) == 0 {
		return OrderSubmitted
	}

	allServed := true
	allReady := true
	anyReadyOrServed := false
	for _, item := range active {
		switch item.Status {
		case ItemServed:
			anyReadyOrServed = true
		case ItemReady:
			anyReadyOrServed = true
			allServed = false
		default:
			allServed = false
			allReady = false
		}
	}

	switch {
	case allServed:
		return OrderServed
	case allReady:
		return OrderReady
	case anyReadyOrServed:
		return OrderPartialReady
	default:
		return OrderSubmitted
	}
}

// AdvanceReadiness applies the derived readiness status if the order is in
// the derivation window and the derived status is a forward move. Order
// status never regresses except to CANCELLED.
func (o *Order) AdvanceReadiness() bool {
	if orderRank[o.Status] < orderRank[OrderSubmitted] || orderRank[o.Status] >= orderRank[OrderServed] {
		return false
	}
	derived := o.DeriveReadiness()
	if orderRank[derived] > orderRank[o.Status] {
		o.Status = derived
		return true
	}
	return false
}

// AdvanceTo moves the order along the forward path. CANCELLED is reachable
// from any status strictly before BILLED.
func (o *Order) AdvanceTo(next OrderStatus) error {
	if next == OrderCancelled {
		if o.Status == OrderCancelled || orderRank[o.Status] >= orderRank[OrderBilled] {
			return fmt.Errorf("%s -> cancelled: %w", o.Status, ErrInvalidOrderTransition)
		}
		o.Status = OrderCancelled
		return nil
	}
	// voidBill reverts BILLED back to SERVED so a corrected bill can be issued
	if o.Status == OrderBilled && next == OrderServed {
		o.Status = OrderServed
		return nil
	}
	if orderRank[next] <= orderRank[o.Status] || o.Status == OrderCancelled {
		return fmt.Errorf("%s -> %s: %w", o.Status, next, ErrInvalidOrderTransition)
	}
	o.Status = next
	return nil
}
