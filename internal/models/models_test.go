package models

import "testing"

func TestOrderIsTerminal(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{OrderPending, false},
		{OrderPreparing, false},
		{OrderReady, false},
		{OrderCompleted, true},
		{OrderCancelled, true},
	}
	for _, tc := range cases {
		o := Order{Status: tc.status}
		if got := o.IsTerminal(); got != tc.want {
			t.Errorf("IsTerminal() for status %q = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, status := range []string{OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled} {
		if !IsValidOrderStatus(status) {
			t.Errorf("IsValidOrderStatus(%q) = false, want true", status)
		}
	}
	for _, status := range []string{"", "done", "PENDING"} {
		if IsValidOrderStatus(status) {
			t.Errorf("IsValidOrderStatus(%q) = true, want false", status)
		}
	}
}

func TestIsValidPaymentMethod(t *testing.T) {
	for _, method := range []string{PaymentCash, PaymentMobileMoney, PaymentCredit, PaymentManagerConsumption} {
		if !IsValidPaymentMethod(method) {
			t.Errorf("IsValidPaymentMethod(%q) = false, want true", method)
		}
	}
	if IsValidPaymentMethod("cheque") {
		t.Error("IsValidPaymentMethod(\"cheque\") = true, want false")
	}
}

func TestIsValidTableStatus(t *testing.T) {
	for _, status := range []string{TableFree, TableOccupied, TableReserved} {
		if !IsValidTableStatus(status) {
			t.Errorf("IsValidTableStatus(%q) = false, want true", status)
		}
	}
	if IsValidTableStatus("closed") {
		t.Error("IsValidTableStatus(\"closed\") = true, want false")
	}
}

func TestProductIsLowStock(t *testing.T) {
	cases := []struct {
		stock, min int
		want       bool
	}{
		{0, 5, true},
		{5, 5, true},
		{6, 5, false},
	}
	for _, tc := range cases {
		p := Product{StockQuantity: tc.stock, MinStockLevel: tc.min}
		if got := p.IsLowStock(); got != tc.want {
			t.Errorf("IsLowStock() with stock %d min %d = %v, want %v", tc.stock, tc.min, got, tc.want)
		}
	}
}

func TestNewNullString(t *testing.T) {
	if got := NewNullString(""); got != nil {
		t.Errorf("NewNullString(\"\") = %v, want nil", *got)
	}
	if got := NewNullString("note"); got == nil || *got != "note" {
		t.Error("NewNullString(\"note\") did not round-trip")
	}
}
