package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound2_BankersRounding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.00"},  // half rounds to even
		{"1.015", "1.02"},  // half rounds to even
		{"1.025", "1.02"},  // half rounds to even
		{"19.255", "19.26"},
		{"2.344", "2.34"},
		{"2.346", "2.35"},
		{"-1.005", "-1.00"},
	}

	for _, tt := range tests {
		if got := Round2(dec(tt.in)); !got.Equal(dec(tt.want)) {
			t.Errorf("Round2(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		qty       int
		surcharge string
		want      string
	}{
		{"plain line", "100", 2, "0", "200.00"},
		{"single unit", "50", 1, "0", "50.00"},
		{"with option surcharge", "80", 2, "15.00", "175.00"},
		{"fractional price", "9.99", 3, "0", "29.97"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Line(dec(tt.unitPrice), tt.qty, dec(tt.surcharge))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("Line(%s, %d, %s) = %s, want %s", tt.unitPrice, tt.qty, tt.surcharge, got, tt.want)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name              string
		subtotal          string
		serviceChargePct  string
		vatPct            string
		discount          string
		wantServiceCharge string
		wantVAT           string
		wantGrandTotal    string
	}{
		{
			// items A(qty 2, price 100) and B(qty 1, price 50)
			name:              "reference order",
			subtotal:          "250",
			serviceChargePct:  "0.10",
			vatPct:            "0.07",
			discount:          "0",
			wantServiceCharge: "25.00",
			wantVAT:           "19.25",
			wantGrandTotal:    "294.25",
		},
		{
			name:              "after voiding item B",
			subtotal:          "200",
			serviceChargePct:  "0.10",
			vatPct:            "0.07",
			discount:          "0",
			wantServiceCharge: "20.00",
			wantVAT:           "15.40",
			wantGrandTotal:    "235.40",
		},
		{
			name:              "with discount",
			subtotal:          "250",
			serviceChargePct:  "0.10",
			vatPct:            "0.07",
			discount:          "50",
			wantServiceCharge: "25.00",
			wantVAT:           "19.25",
			wantGrandTotal:    "244.25",
		},
		{
			name:              "zero policy",
			subtotal:          "99.99",
			serviceChargePct:  "0",
			vatPct:            "0",
			discount:          "0",
			wantServiceCharge: "0.00",
			wantVAT:           "0.00",
			wantGrandTotal:    "99.99",
		},
		{
			name:              "empty order",
			subtotal:          "0",
			serviceChargePct:  "0.10",
			vatPct:            "0.07",
			discount:          "0",
			wantServiceCharge: "0.00",
			wantVAT:           "0.00",
			wantGrandTotal:    "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(dec(tt.subtotal), dec(tt.serviceChargePct), dec(tt.vatPct), dec(tt.discount))
			if !got.ServiceCharge.Equal(dec(tt.wantServiceCharge)) {
				t.Errorf("service charge = %s, want %s", got.ServiceCharge, tt.wantServiceCharge)
			}
			if !got.VAT.Equal(dec(tt.wantVAT)) {
				t.Errorf("vat = %s, want %s", got.VAT, tt.wantVAT)
			}
			if !got.GrandTotal.Equal(dec(tt.wantGrandTotal)) {
				t.Errorf("grand total = %s, want %s", got.GrandTotal, tt.wantGrandTotal)
			}
		})
	}
}

func TestCompute_SingleRoundingPerField(t *testing.T) {
	// VAT applies to the rounded service charge, not the raw product.
	got := Compute(dec("33.33"), dec("0.10"), dec("0.07"), dec("0"))
	// service = round(3.333) = 3.33; vat = round(36.66 * 0.07) = round(2.5662) = 2.57
	if !got.ServiceCharge.Equal(dec("3.33")) {
		t.Errorf("service charge = %s, want 3.33", got.ServiceCharge)
	}
	if !got.VAT.Equal(dec("2.57")) {
		t.Errorf("vat = %s, want 2.57", got.VAT)
	}
	if !got.GrandTotal.Equal(dec("39.23")) {
		t.Errorf("grand total = %s, want 39.23", got.GrandTotal)
	}
}
