package calculator

import (
	"math"
	"math/rand"
	"testing"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []Item
		taxRate      float64
		discountRate float64
		want         Totals
	}{
		{
			name: "web project with tax and discount",
			items: []Item{
				{Description: "Website", Quantity: 1, UnitPrice: 2500.00},
				{Description: "Logo", Quantity: 1, UnitPrice: 500.00},
				{Description: "SEO", Quantity: 3, UnitPrice: 200.00},
				{Description: "Domain", Quantity: 1, UnitPrice: 15.00},
				{Description: "Hosting", Quantity: 1, UnitPrice: 120.00},
			},
			taxRate:      8.5,
			discountRate: 5.0,
			want: Totals{
				Subtotal:       3735.00,
				DiscountAmount: 186.75,
				TaxableAmount:  3548.25,
				TaxAmount:      301.60125,
				Total:          3849.85125,
			},
		},
		{
			name: "two items",
			items: []Item{
				{Description: "Item 1", Quantity: 2, UnitPrice: 100.00},
				{Description: "Item 2", Quantity: 1, UnitPrice: 50.00},
			},
			taxRate:      10,
			discountRate: 5,
			want: Totals{
				Subtotal:       250.00,
				DiscountAmount: 12.50,
				TaxableAmount:  237.50,
				TaxAmount:      23.75,
				Total:          261.25,
			},
		},
		{
			name:         "no items",
			items:        nil,
			taxRate:      20,
			discountRate: 10,
			want:         Totals{},
		},
		{
			name:  "no rates",
			items: []Item{{Description: "Consulting", Quantity: 4, UnitPrice: 75}},
			want: Totals{
				Subtotal:      300,
				TaxableAmount: 300,
				Total:         300,
			},
		},
		{
			name:         "discount over one hundred percent is not clamped",
			items:        []Item{{Description: "Refund", Quantity: 1, UnitPrice: 100}},
			discountRate: 150,
			want: Totals{
				Subtotal:       100,
				DiscountAmount: 150,
				TaxableAmount:  -50,
				Total:          -50,
			},
		},
		{
			name: "negative line acts as a credit",
			items: []Item{
				{Description: "Service", Quantity: 1, UnitPrice: 100},
				{Description: "Credit", Quantity: -1, UnitPrice: 20},
			},
			taxRate: 10,
			want: Totals{
				Subtotal:      80,
				TaxableAmount: 80,
				TaxAmount:     8,
				Total:         88,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, tt.taxRate, tt.discountRate)
			assertClose(t, "subtotal", got.Subtotal, tt.want.Subtotal)
			assertClose(t, "discount", got.DiscountAmount, tt.want.DiscountAmount)
			assertClose(t, "taxable", got.TaxableAmount, tt.want.TaxableAmount)
			assertClose(t, "tax", got.TaxAmount, tt.want.TaxAmount)
			assertClose(t, "total", got.Total, tt.want.Total)
		})
	}
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	items := []Item{
		{Description: "a", Quantity: 0.1, UnitPrice: 3},
		{Description: "b", Quantity: 7, UnitPrice: 1e6},
		{Description: "c", Quantity: 1, UnitPrice: 0.2},
		{Description: "d", Quantity: 3.3, UnitPrice: 19.99},
		{Description: "e", Quantity: 1, UnitPrice: 1e-3},
	}
	want := ComputeTotals(items, 7.25, 3)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]Item(nil), items...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := ComputeTotals(shuffled, 7.25, 3)
		if got != want {
			t.Fatalf("permutation %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []Item{{Description: "x", Quantity: 3, UnitPrice: 33.33}}
	first := ComputeTotals(items, 8.5, 2.5)
	for i := 0; i < 3; i++ {
		if got := ComputeTotals(items, 8.5, 2.5); got != first {
			t.Fatalf("call %d: got %+v, want %+v", i, got, first)
		}
	}
}

func TestComputeTotalsNonNegative(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := r.Intn(6)
		items := make([]Item, n)
		for j := range items {
			items[j] = Item{Description: "x", Quantity: float64(r.Intn(10)), UnitPrice: r.Float64() * 1000}
		}
		tax := r.Float64() * 30
		discount := r.Float64() * 100

		got := ComputeTotals(items, tax, discount)
		if got.Total < 0 {
			t.Fatalf("negative total %v for items=%v tax=%v discount=%v", got.Total, items, tax, discount)
		}
		want := (got.Subtotal - got.DiscountAmount) + got.TaxAmount
		if got.Total != want {
			t.Fatalf("total %v != taxable + tax %v", got.Total, want)
		}
	}
}

func assertClose(t *testing.T, field string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}
