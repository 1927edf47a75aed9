package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestItemStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from ItemStatus
		to   ItemStatus
		want bool
	}{
		{ItemPending, ItemCooking, true},
		{ItemPending, ItemVoid, true},
		{ItemPending, ItemReady, false},
		{ItemPending, ItemServed, false},
		{ItemCooking, ItemReady, true},
		{ItemCooking, ItemVoid, true},
		{ItemCooking, ItemServed, false},
		{ItemReady, ItemServed, true},
		{ItemReady, ItemVoid, false},
		{ItemReady, ItemCooking, false},
		{ItemServed, ItemVoid, false},
		{ItemServed, ItemReady, false},
		{ItemVoid, ItemCooking, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func testOrder(t *testing.T, statuses ...ItemStatus) *Order {
	t.Helper()
	order := &Order{
		Status:           OrderSubmitted,
		ServiceChargePct: dec(t, "0.10"),
		VATPct:           dec(t, "0.07"),
		DiscountAmt:      decimal.Zero,
	}
	for i, status := range statuses {
		item := OrderItem{
			ID:        i + 1,
			Name:      "dish",
			Quantity:  1,
			UnitPrice: dec(t, "100"),
			Status:    status,
		}
		item.ComputeLineTotal()
		order.Items = append(order.Items, item)
	}
	order.Recompute()
	return order
}

func TestOrder_DeriveReadiness(t *testing.T) {
	tests := []struct {
		name     string
		statuses []ItemStatus
		want     OrderStatus
	}{
		{"all pending", []ItemStatus{ItemPending, ItemPending}, OrderSubmitted},
		{"all cooking", []ItemStatus{ItemCooking, ItemCooking}, OrderSubmitted},
		{"one ready one pending", []ItemStatus{ItemReady, ItemPending}, OrderPartialReady},
		{"one served one cooking", []ItemStatus{ItemServed, ItemCooking}, OrderPartialReady},
		{"all ready", []ItemStatus{ItemReady, ItemReady}, OrderReady},
		{"served and ready", []ItemStatus{ItemServed, ItemReady}, OrderPartialReady},
		{"all served", []ItemStatus{ItemServed, ItemServed}, OrderServed},
		{"void excluded from aggregate", []ItemStatus{ItemServed, ItemVoid}, OrderServed},
		{"void only", []ItemStatus{ItemVoid}, OrderSubmitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testOrder(t, tt.statuses...)
			if got := order.DeriveReadiness(); got != tt.want {
				t.Errorf("DeriveReadiness() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOrder_AdvanceReadiness_NeverRegresses(t *testing.T) {
	order := testOrder(t, ItemReady, ItemPending)
	if !order.AdvanceReadiness() {
		t.Fatal("expected advance to partial_ready")
	}
	if order.Status != OrderPartialReady {
		t.Fatalf("status = %s, want partial_ready", order.Status)
	}

	// Voiding the only ready item would derive SUBMITTED; status must hold.
	order.Items[0].Status = ItemVoid
	if order.AdvanceReadiness() {
		t.Error("expected no change from a regressive derivation")
	}
	if order.Status != OrderPartialReady {
		t.Errorf("status regressed to %s", order.Status)
	}
}

func TestOrder_AdvanceReadiness_OutsideWindow(t *testing.T) {
	order := testOrder(t, ItemServed)
	order.Status = OrderOpen
	if order.AdvanceReadiness() {
		t.Error("derivation must not run before submission")
	}

	order.Status = OrderBilled
	if order.AdvanceReadiness() {
		t.Error("derivation must not run once billed")
	}
}

func TestOrder_Recompute(t *testing.T) {
	order := testOrder(t, ItemPending)
	order.Items[0].Quantity = 2
	order.Items[0].ComputeLineTotal()

	second := OrderItem{ID: 2, Name: "soup", Quantity: 1, UnitPrice: dec(t, "50"), Status: ItemPending}
	second.ComputeLineTotal()
	order.Items = append(order.Items, second)
	order.Recompute()

	if !order.Subtotal.Equal(dec(t, "250.00")) {
		t.Errorf("subtotal = %s, want 250.00", order.Subtotal)
	}
	if !order.ServiceChargeAmt.Equal(dec(t, "25.00")) {
		t.Errorf("service charge = %s, want 25.00", order.ServiceChargeAmt)
	}
	if !order.VATAmt.Equal(dec(t, "19.25")) {
		t.Errorf("vat = %s, want 19.25", order.VATAmt)
	}
	if !order.GrandTotal.Equal(dec(t, "294.25")) {
		t.Errorf("grand total = %s, want 294.25", order.GrandTotal)
	}

	// Voiding the second item excludes its line from every total.
	order.Items[1].Status = ItemVoid
	order.Recompute()
	if !order.Subtotal.Equal(dec(t, "200.00")) {
		t.Errorf("subtotal after void = %s, want 200.00", order.Subtotal)
	}
	if !order.GrandTotal.Equal(dec(t, "235.40")) {
		t.Errorf("grand total after void = %s, want 235.40", order.GrandTotal)
	}
}

func TestOrder_AdvanceTo(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		wantErr bool
	}{
		{"open to submitted", OrderOpen, OrderSubmitted, false},
		{"served to billed", OrderServed, OrderBilled, false},
		{"billed to paid", OrderBilled, OrderPaid, false},
		{"billed back to served", OrderBilled, OrderServed, false},
		{"open cancelled", OrderOpen, OrderCancelled, false},
		{"served cancelled", OrderServed, OrderCancelled, false},
		{"billed cancelled", OrderBilled, OrderCancelled, true},
		{"paid cancelled", OrderPaid, OrderCancelled, true},
		{"paid regression", OrderPaid, OrderBilled, true},
		{"submitted regression", OrderSubmitted, OrderOpen, true},
		{"cancelled forward", OrderCancelled, OrderSubmitted, true},
		{"cancelled again", OrderCancelled, OrderCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Status: tt.from}
			err := order.AdvanceTo(tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AdvanceTo(%s -> %s) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
			if err == nil && order.Status != tt.to {
				t.Errorf("status = %s, want %s", order.Status, tt.to)
			}
		})
	}
}

func TestOrderItem_ComputeLineTotal_WithOptions(t *testing.T) {
	item := OrderItem{
		Quantity:  2,
		UnitPrice: dec(t, "80"),
		Options: []SelectedOption{
			{Name: "extra shrimp", Surcharge: dec(t, "20.00")},
			{Name: "spicy", Surcharge: decimal.Zero},
		},
	}
	item.ComputeLineTotal()
	if !item.LineTotal.Equal(dec(t, "180.00")) {
		t.Errorf("line total = %s, want 180.00", item.LineTotal)
	}
}

func TestBill_PaidSum(t *testing.T) {
	bill := &Bill{
		GrandTotal: dec(t, "294.25"),
		Payments: []Payment{
			{Amount: dec(t, "150.00")},
			{Amount: dec(t, "100.00"), Voided: true},
			{Amount: dec(t, "144.25")},
		},
	}
	if !bill.PaidSum().Equal(dec(t, "294.25")) {
		t.Errorf("paid sum = %s, want 294.25", bill.PaidSum())
	}
	if !bill.Outstanding().IsZero() {
		t.Errorf("outstanding = %s, want 0", bill.Outstanding())
	}
}
