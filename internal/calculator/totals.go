package calculator

import (
	"sort"
)

// Item is a single priced line on an invoice.
type Item struct {
	Description string
	Quantity    float64
	UnitPrice   float64
}

// LineTotal returns quantity × unit price.
func (i Item) LineTotal() float64 {
	return i.Quantity * i.UnitPrice
}

// Totals is the full breakdown of an invoice's amounts.
// Values keep full float64 precision; rounding is a presentation concern.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxableAmount  float64 `json:"taxable_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	Total          float64 `json:"total"`
}

// ComputeTotals applies the discount to the subtotal and then taxes what is left:
//
//	subtotal = Σ quantity × unit_price
//	discount = subtotal × discountRate/100
//	taxable  = subtotal − discount
//	tax      = taxable × taxRate/100
//	total    = taxable + tax
//
// Rates are percentages. Nothing is clamped, so a discount over 100% yields a
// negative total. An empty item list gives all zeros.
func ComputeTotals(items []Item, taxRate, discountRate float64) Totals {
	subtotal := sumLineTotals(items)
	discount := subtotal * (discountRate / 100)
	taxable := subtotal - discount
	tax := taxable * (taxRate / 100)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          taxable + tax,
	}
}

// sumLineTotals adds line totals in ascending order so the result does not
// depend on the order the items were entered in.
func sumLineTotals(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}
	lines := make([]float64, len(items))
	for i, item := range items {
		lines[i] = item.LineTotal()
	}
	sort.Float64s(lines)

	var sum float64
	for _, v := range lines {
		sum += v
	}
	return sum
}
