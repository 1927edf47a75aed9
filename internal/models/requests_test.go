package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAddItemRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     AddItemRequest
		wantErr error
	}{
		{
			name: "valid request",
			req:  AddItemRequest{MenuItemID: 1, Quantity: 2, AddedBy: "staff-1"},
		},
		{
			name:    "zero quantity",
			req:     AddItemRequest{MenuItemID: 1, Quantity: 0, AddedBy: "staff-1"},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			req:     AddItemRequest{MenuItemID: 1, Quantity: -3, AddedBy: "staff-1"},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "missing menu item",
			req:     AddItemRequest{Quantity: 1, AddedBy: "staff-1"},
			wantErr: ErrMissingReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaymentRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     PaymentRequest
		wantErr bool
	}{
		{
			name: "valid cash payment",
			req:  PaymentRequest{Method: PayCash, Amount: decimal.NewFromInt(100), ReceivedBy: "cashier-1"},
		},
		{
			name:    "zero amount",
			req:     PaymentRequest{Method: PayCash, Amount: decimal.Zero, ReceivedBy: "cashier-1"},
			wantErr: true,
		},
		{
			name:    "negative amount",
			req:     PaymentRequest{Method: PayCard, Amount: decimal.NewFromInt(-5), ReceivedBy: "cashier-1"},
			wantErr: true,
		},
		{
			name:    "unknown method",
			req:     PaymentRequest{Method: "barter", Amount: decimal.NewFromInt(10), ReceivedBy: "cashier-1"},
			wantErr: true,
		},
		{
			name:    "missing actor",
			req:     PaymentRequest{Method: PayQR, Amount: decimal.NewFromInt(10)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVoidItemRequest_Validate(t *testing.T) {
	req := VoidItemRequest{VoidedBy: "staff-1"}
	if !errors.Is(req.Validate(), ErrVoidReasonRequired) {
		t.Error("expected void reason to be required")
	}
	req.Reason = "dropped plate"
	if err := req.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
