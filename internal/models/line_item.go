package models

import (
	"encoding/json"

	"github.com/mmynk/invoicer/internal/calculator"
)

// LineItem is one billed line. Line items are values: to change one, remove
// it from the invoice and add a new one.
type LineItem struct {
	// Description must be non-empty.
	Description string `json:"description"`

	// Quantity may be fractional (hours).
	Quantity float64 `json:"quantity"`

	UnitPrice float64 `json:"unit_price"`
}

// Total returns quantity × unit price. It is recomputed on every call.
func (li LineItem) Total() float64 {
	return li.Quantity * li.UnitPrice
}

func (li LineItem) calcItem() calculator.Item {
	return calculator.Item{Description: li.Description, Quantity: li.Quantity, UnitPrice: li.UnitPrice}
}

// MarshalJSON adds total_price for readers of the record. It is ignored when
// the record is read back.
func (li LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return json.Marshal(struct {
		plain
		TotalPrice float64 `json:"total_price"`
	}{plain(li), li.Total()})
}
