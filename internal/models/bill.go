package models

import (
	"time"

	"github.com/shopspring/decimal"

	"dinehall/internal/money"
)

// BillStatus represents the paid status of a bill
type BillStatus string

const (
	BillUnpaid BillStatus = "unpaid"
	BillPaid   BillStatus = "paid"
	BillVoid   BillStatus = "void"
)

// PaymentMethod is an accepted settlement method
type PaymentMethod string

const (
	PayCash     PaymentMethod = "cash"
	PayCard     PaymentMethod = "card"
	PayQR       PaymentMethod = "qr"
	PayTransfer PaymentMethod = "transfer"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PayCash, PayCard, PayQR, PayTransfer:
		return true
	}
	return false
}

// Bill is an immutable financial snapshot of an order presented for payment.
// The monetary fields are frozen at creation; only Status and PaidAt move.
type Bill struct {
	ID               string          `json:"id" db:"id"`
	OrderID          int             `json:"order_id" db:"order_id"`
	OrderNumber      string          `json:"order_number" db:"order_number"`
	Subtotal         decimal.Decimal `json:"subtotal" db:"subtotal"`
	ServiceChargeAmt decimal.Decimal `json:"service_charge_amt" db:"service_charge_amt"`
	VATAmt           decimal.Decimal `json:"vat_amt" db:"vat_amt"`
	DiscountAmt      decimal.Decimal `json:"discount_amt" db:"discount_amt"`
	GrandTotal       decimal.Decimal `json:"grand_total" db:"grand_total"`
	Status           BillStatus      `json:"status" db:"status"`
	VoidReason       *string         `json:"void_reason,omitempty" db:"void_reason"`
	Payments         []Payment       `json:"payments"`
	CreatedBy        string          `json:"created_by" db:"created_by"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	PaidAt           *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
}

// NewBillFromOrder snapshots the order's totals at this instant.
func NewBillFromOrder(id string, o *Order, createdBy string) *Bill {
	return &Bill{
		ID:               id,
		OrderID:          o.ID,
		OrderNumber:      o.Number,
		Subtotal:         o.Subtotal,
		ServiceChargeAmt: o.ServiceChargeAmt,
		VATAmt:           o.VATAmt,
		DiscountAmt:      o.DiscountAmt,
		GrandTotal:       o.GrandTotal,
		Status:           BillUnpaid,
		CreatedBy:        createdBy,
	}
}

// PaidSum returns the running sum of non-void payments.
func (b *Bill) PaidSum() decimal.Decimal {
	sum := money.Zero
	for _, p := range b.Payments {
		if !p.Voided {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// Outstanding returns the amount still owed.
func (b *Bill) Outstanding() decimal.Decimal {
	return b.GrandTotal.Sub(b.PaidSum())
}

// Payment records funds received against a bill. Payments are append-only.
type Payment struct {
	ID        string          `json:"id" db:"id"`
	BillID    string          `json:"bill_id" db:"bill_id"`
	Method    PaymentMethod   `json:"method" db:"method"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Reference *string         `json:"reference,omitempty" db:"reference"`
	Voided    bool            `json:"voided" db:"voided"`
	CreatedBy string          `json:"created_by" db:"created_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
