// Package money holds the fixed-precision arithmetic and rounding policy
// shared by every total computation.
package money

import "github.com/shopspring/decimal"

// Zero is the additive identity at the currency scale.
var Zero = decimal.Zero

// Round2 rounds to 2 decimal places using banker's rounding (half to even).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Line computes an order line total: unit price times quantity plus the flat
// option surcharge captured in the item snapshot.
func Line(unitPrice decimal.Decimal, qty int, surcharge decimal.Decimal) decimal.Decimal {
	return Round2(unitPrice.Mul(decimal.NewFromInt(int64(qty))).Add(surcharge))
}

// Totals is the monetary breakdown of an order.
type Totals struct {
	Subtotal      decimal.Decimal
	ServiceCharge decimal.Decimal
	VAT           decimal.Decimal
	GrandTotal    decimal.Decimal
}

// Compute derives order totals from a subtotal and the billing policy.
// Each derived field is rounded exactly once; already-rounded values are
// never re-rounded.
//
//	service_charge = round(subtotal * service_charge_pct)
//	vat            = round((subtotal + service_charge) * vat_pct)
//	grand_total    = subtotal + service_charge + vat - discount
func Compute(subtotal, serviceChargePct, vatPct, discount decimal.Decimal) Totals {
	serviceCharge := Round2(subtotal.Mul(serviceChargePct))
	vat := Round2(subtotal.Add(serviceCharge).Mul(vatPct))
	return Totals{
		Subtotal:      subtotal,
		ServiceCharge: serviceCharge,
		VAT:           vat,
		GrandTotal:    subtotal.Add(serviceCharge).Add(vat).Sub(discount),
	}
}
