// Package models defines the invoice domain types.
//
// # Models
//
//   - Invoice: mutable builder an adapter fills in field by field
//   - Snapshot: immutable, serializable result of Invoice.Finalize
//   - LineItem: one billed line (description, quantity, unit price)
//   - Party: contact block for the business and the client
//   - Date: calendar date stored as YYYY-MM-DD
//
// # Lifecycle
//
//  1. NewInvoice, then SetBusinessInfo, SetClientInfo, SetInvoiceDetails
//  2. AddItem / RemoveItem in any order; CalculateTotals may be called at any point
//  3. Finalize validates the required fields and returns a Snapshot
//  4. The Snapshot is what storage saves and what the renderer, exporter and
//     mailer read. Its totals are recomputed on every snapshot, never cached.
//
// The invoice number is the record's identity. It is caller supplied and not
// checked for uniqueness; saving the same number twice replaces the first record.
package models
