package models

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/invoicer/internal/apperr"
)

var fixedNow = time.Date(2025, time.March, 14, 16, 30, 0, 0, time.UTC)

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv := NewInvoice(WithClock(func() time.Time { return fixedNow }))
	inv.SetBusinessInfo(Party{Name: "Acme Studio", Address: "1 Main St\nSpringfield", Email: "billing@acme.test"})
	inv.SetClientInfo(Party{Name: "Globex", Address: "9 Side Rd"})
	if err := inv.SetInvoiceDetails(Details{Number: "INV-001", TaxRate: 10, DiscountRate: 5, PaymentTerms: "Net 30"}); err != nil {
		t.Fatalf("SetInvoiceDetails failed: %v", err)
	}
	for _, it := range []struct {
		desc  string
		qty   float64
		price float64
	}{{"Item 1", 2, 100}, {"Item 2", 1, 50}} {
		if err := inv.AddItem(it.desc, it.qty, it.price); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
	}
	return inv
}

func TestInvoiceBuilder(t *testing.T) {
	t.Run("date defaults to today", func(t *testing.T) {
		inv := newTestInvoice(t)
		snap := inv.ToSnapshot()
		if got := snap.InvoiceDate.String(); got != "2025-03-14" {
			t.Errorf("InvoiceDate = %q, want 2025-03-14", got)
		}
	})

	t.Run("explicit date is kept", func(t *testing.T) {
		inv := NewInvoice()
		d := Date{Year: 2024, Month: time.December, Day: 1}
		if err := inv.SetInvoiceDetails(Details{Number: "X", Date: d}); err != nil {
			t.Fatal(err)
		}
		if inv.ToSnapshot().InvoiceDate != d {
			t.Errorf("date not preserved")
		}
	})

	t.Run("empty invoice number rejected", func(t *testing.T) {
		inv := NewInvoice()
		err := inv.SetInvoiceDetails(Details{Number: "   "})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("empty description rejected", func(t *testing.T) {
		inv := NewInvoice()
		if err := inv.AddItem("", 1, 1); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
		if len(inv.Items()) != 0 {
			t.Error("rejected item must not be added")
		}
	})

	t.Run("remove item keeps order", func(t *testing.T) {
		inv := newTestInvoice(t)
		if err := inv.AddItem("Item 3", 1, 1); err != nil {
			t.Fatal(err)
		}
		if err := inv.RemoveItem(1); err != nil {
			t.Fatal(err)
		}
		items := inv.Items()
		if len(items) != 2 || items[0].Description != "Item 1" || items[1].Description != "Item 3" {
			t.Errorf("unexpected items after remove: %+v", items)
		}
		if err := inv.RemoveItem(5); apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected validation error for bad index, got %v", err)
		}
	})

	t.Run("totals follow edits", func(t *testing.T) {
		inv := newTestInvoice(t)
		if got := inv.CalculateTotals().Total; math.Abs(got-261.25) > 1e-9 {
			t.Errorf("total = %v, want 261.25", got)
		}
		if err := inv.AddItem("Item 3", 1, 100); err != nil {
			t.Fatal(err)
		}
		if got := inv.CalculateTotals().Subtotal; got != 350 {
			t.Errorf("subtotal after add = %v, want 350", got)
		}
	})
}

func TestFinalize(t *testing.T) {
	t.Run("complete invoice", func(t *testing.T) {
		snap, err := newTestInvoice(t).Finalize()
		if err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}
		if snap.InvoiceNumber != "INV-001" || len(snap.Items) != 2 {
			t.Errorf("unexpected snapshot: %+v", snap)
		}
	})

	t.Run("zero items is allowed", func(t *testing.T) {
		inv := NewInvoice()
		inv.SetBusinessInfo(Party{Name: "B"})
		inv.SetClientInfo(Party{Name: "C"})
		if err := inv.SetInvoiceDetails(Details{Number: "EMPTY"}); err != nil {
			t.Fatal(err)
		}
		snap, err := inv.Finalize()
		if err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}
		if snap.Totals.Total != 0 || snap.Items == nil {
			t.Errorf("expected zero totals and empty item list, got %+v", snap)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := NewInvoice().Finalize()
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, field := range []string{"business_name", "client_name", "invoice_number"} {
			if !strings.Contains(err.Error(), field) {
				t.Errorf("error %q does not mention %s", err, field)
			}
		}
	})
}

func TestSnapshotJSON(t *testing.T) {
	snap, err := newTestInvoice(t).Finalize()
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"business_info", "client_info", "invoice_number", "invoice_date", "items", "tax_rate", "discount", "payment_terms", "totals"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("record is missing key %q", key)
		}
	}
	if raw["invoice_date"] != "2025-03-14" {
		t.Errorf("invoice_date = %v", raw["invoice_date"])
	}
	first := raw["items"].([]any)[0].(map[string]any)
	if first["total_price"] != 200.0 {
		t.Errorf("total_price = %v, want 200", first["total_price"])
	}

	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.InvoiceNumber != snap.InvoiceNumber || back.InvoiceDate != snap.InvoiceDate || back.ClientInfo != snap.ClientInfo {
		t.Errorf("round trip changed header: %+v", back)
	}
	if back.Totals != snap.Totals {
		t.Errorf("persisted totals %+v != %+v", back.Totals, snap.Totals)
	}
	if back.Recompute() != back.Totals {
		t.Errorf("recomputed totals %+v disagree with persisted %+v", back.Recompute(), back.Totals)
	}
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{"valid", `{"invoice_number":"A","invoice_date":"2025-01-02","items":[]}`, false},
		{"missing number", `{"invoice_date":"2025-01-02"}`, true},
		{"missing date", `{"invoice_number":"A"}`, true},
		{"blank description", `{"invoice_number":"A","invoice_date":"2025-01-02","items":[{"description":""}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Snapshot
			if err := json.Unmarshal([]byte(tt.json), &s); err != nil {
				t.Fatal(err)
			}
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	var s Snapshot
	if err := json.Unmarshal([]byte(`{"invoice_date":"14/03/2025"}`), &s); err == nil {
		t.Error("expected an error for a non ISO date")
	}
}

func TestSnapshotInvoice(t *testing.T) {
	snap, err := newTestInvoice(t).Finalize()
	if err != nil {
		t.Fatal(err)
	}
	inv := snap.Invoice()
	if err := inv.AddItem("Extra", 1, 10); err != nil {
		t.Fatal(err)
	}
	if len(snap.Items) != 2 {
		t.Error("editing the rebuilt invoice must not change the snapshot")
	}
	if inv.Number() != "INV-001" {
		t.Errorf("Number() = %q", inv.Number())
	}
}
