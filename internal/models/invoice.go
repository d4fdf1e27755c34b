package models

import (
	"errors"
	"strings"
	"time"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/calculator"
)

// Invoice is the mutable record an adapter fills in before saving.
// It is not safe for concurrent use.
//
// Build it with the setters, then call Finalize to obtain the Snapshot that
// gets persisted, rendered, exported and mailed.
type Invoice struct {
	business     Party
	client       Party
	number       string
	date         Date
	taxRate      float64
	discountRate float64
	paymentTerms string
	items        []LineItem

	now func() time.Time
}

// Option configures an Invoice.
type Option func(*Invoice)

// WithClock overrides the clock used to default the invoice date.
func WithClock(now func() time.Time) Option {
	return func(inv *Invoice) { inv.now = now }
}

// NewInvoice returns an empty invoice.
func NewInvoice(opts ...Option) *Invoice {
	inv := &Invoice{now: time.Now}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Details holds the invoice header fields.
type Details struct {
	// Number identifies the invoice. It is required and doubles as the
	// storage key, so saving two invoices with the same number overwrites.
	Number string

	// Date defaults to today (at the time SetInvoiceDetails is called) when zero.
	Date Date

	// TaxRate and DiscountRate are percentages. Both default to 0.
	TaxRate      float64
	DiscountRate float64

	PaymentTerms string
}

func (inv *Invoice) SetBusinessInfo(p Party) { inv.business = p }

func (inv *Invoice) SetClientInfo(p Party) { inv.client = p }

// SetInvoiceDetails sets the header fields. An empty number is rejected.
func (inv *Invoice) SetInvoiceDetails(d Details) error {
	number := strings.TrimSpace(d.Number)
	if number == "" {
		return apperr.Validation("invoice_number", "is required")
	}

	date := d.Date
	if date.IsZero() {
		date = DateOf(inv.now())
	}

	inv.number = number
	inv.date = date
	inv.taxRate = d.TaxRate
	inv.discountRate = d.DiscountRate
	inv.paymentTerms = d.PaymentTerms
	return nil
}

// AddItem appends a line item. Items keep insertion order.
func (inv *Invoice) AddItem(description string, quantity, unitPrice float64) error {
	if strings.TrimSpace(description) == "" {
		return apperr.Validation("description", "item description is required")
	}
	inv.items = append(inv.items, LineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	})
	return nil
}

// RemoveItem deletes the item at index, shifting later items up.
func (inv *Invoice) RemoveItem(index int) error {
	if index < 0 || index >= len(inv.items) {
		return apperr.Validation("items", "no item at index %d", index)
	}
	inv.items = append(inv.items[:index], inv.items[index+1:]...)
	return nil
}

// Items returns a copy of the line items.
func (inv *Invoice) Items() []LineItem {
	return append([]LineItem(nil), inv.items...)
}

func (inv *Invoice) Number() string { return inv.number }

// CalculateTotals computes the breakdown from the current items and rates.
// Nothing is cached, so calling it after every edit is always current.
func (inv *Invoice) CalculateTotals() calculator.Totals {
	return calculator.ComputeTotals(calcItems(inv.items), inv.taxRate, inv.discountRate)
}

// ToSnapshot captures the current state, complete or not.
func (inv *Invoice) ToSnapshot() *Snapshot {
	items := make([]LineItem, len(inv.items))
	copy(items, inv.items)

	return &Snapshot{
		BusinessInfo:  inv.business,
		ClientInfo:    inv.client,
		InvoiceNumber: inv.number,
		InvoiceDate:   inv.date,
		Items:         items,
		TaxRate:       inv.taxRate,
		DiscountRate:  inv.discountRate,
		PaymentTerms:  inv.paymentTerms,
		Totals:        inv.CalculateTotals(),
	}
}

// Finalize checks that the invoice is complete and returns its snapshot.
// This is the only way adapters obtain something they can save or render.
// An invoice with no items is complete.
func (inv *Invoice) Finalize() (*Snapshot, error) {
	var errs []error
	if strings.TrimSpace(inv.business.Name) == "" {
		errs = append(errs, apperr.Validation("business_name", "is required"))
	}
	if strings.TrimSpace(inv.client.Name) == "" {
		errs = append(errs, apperr.Validation("client_name", "is required"))
	}
	if inv.number == "" {
		errs = append(errs, apperr.Validation("invoice_number", "is required"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return inv.ToSnapshot(), nil
}

func calcItems(items []LineItem) []calculator.Item {
	out := make([]calculator.Item, len(items))
	for i, li := range items {
		out[i] = li.calcItem()
	}
	return out
}
