package models

import (
	"errors"
	"fmt"

	"github.com/mmynk/invoicer/internal/calculator"
)

// Snapshot is the flat, serializable form of a finalized invoice and the unit
// of persistence. Its JSON layout is the record format on disk.
type Snapshot struct {
	BusinessInfo  Party      `json:"business_info"`
	ClientInfo    Party      `json:"client_info"`
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   Date       `json:"invoice_date"`
	Items         []LineItem `json:"items"`
	TaxRate       float64    `json:"tax_rate"`

	// DiscountRate is a percentage, stored under "discount".
	DiscountRate float64 `json:"discount"`

	PaymentTerms string `json:"payment_terms"`

	// Totals is persisted for readers that cannot compute it themselves.
	// Recompute must always agree with it.
	Totals calculator.Totals `json:"totals"`
}

// Validate reports whether a decoded record is structurally usable.
func (s *Snapshot) Validate() error {
	if s.InvoiceNumber == "" {
		return errors.New("missing invoice_number")
	}
	if s.InvoiceDate.IsZero() {
		return errors.New("missing invoice_date")
	}
	for i, item := range s.Items {
		if item.Description == "" {
			return fmt.Errorf("item %d: missing description", i)
		}
	}
	return nil
}

// Recompute derives the totals from the stored items and rates.
func (s *Snapshot) Recompute() calculator.Totals {
	return calculator.ComputeTotals(calcItems(s.Items), s.TaxRate, s.DiscountRate)
}

// Invoice rebuilds an editable invoice from the snapshot.
func (s *Snapshot) Invoice(opts ...Option) *Invoice {
	inv := NewInvoice(opts...)
	inv.business = s.BusinessInfo
	inv.client = s.ClientInfo
	inv.number = s.InvoiceNumber
	inv.date = s.InvoiceDate
	inv.taxRate = s.TaxRate
	inv.discountRate = s.DiscountRate
	inv.paymentTerms = s.PaymentTerms
	inv.items = append([]LineItem(nil), s.Items...)
	return inv
}
