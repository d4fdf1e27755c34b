// Package export writes invoice records out as CSV and JSON documents.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/money"
	"github.com/mmynk/invoicer/internal/storage"
)

// Format is an aggregate export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json" in any case. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", apperr.Validation("format", "unsupported export format %q (want csv or json)", s)
}

// ContentType returns the MIME type of documents in format f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// SummaryColumns are the aggregate export columns, in order.
var SummaryColumns = []string{
	"Invoice Number", "Invoice Date", "Client Name", "Client Address",
	"Subtotal", "Tax Amount", "Discount Amount", "Total", "Payment Terms",
}

// SummaryRow is one invoice in an aggregate export.
// Amounts are rounded to cents.
type SummaryRow struct {
	InvoiceNumber  string  `json:"invoice_number"`
	InvoiceDate    string  `json:"invoice_date"`
	ClientName     string  `json:"client_name"`
	ClientAddress  string  `json:"client_address"`
	Subtotal       float64 `json:"subtotal"`
	TaxAmount      float64 `json:"tax_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	Total          float64 `json:"total"`
	PaymentTerms   string  `json:"payment_terms"`
}

// Summarize builds the aggregate row for snap.
func Summarize(snap *models.Snapshot) SummaryRow {
	return SummaryRow{
		InvoiceNumber:  snap.InvoiceNumber,
		InvoiceDate:    snap.InvoiceDate.String(),
		ClientName:     snap.ClientInfo.Name,
		ClientAddress:  snap.ClientInfo.Address,
		Subtotal:       money.Round2(snap.Totals.Subtotal),
		TaxAmount:      money.Round2(snap.Totals.TaxAmount),
		DiscountAmount: money.Round2(snap.Totals.DiscountAmount),
		Total:          money.Round2(snap.Totals.Total),
		PaymentTerms:   snap.PaymentTerms,
	}
}

// Result describes a written aggregate export.
type Result struct {
	Path   string
	Format Format
	Count  int
}

// Exporter reads records from a store and writes export files into a directory.
type Exporter struct {
	store storage.Store
	dir   string
	now   func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock overrides the clock used for "Generated on" lines and file names.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// New returns an exporter writing into exportsPath.
func New(store storage.Store, exportsPath string, opts ...Option) *Exporter {
	e := &Exporter{store: store, dir: exportsPath, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WriteInvoiceCSV writes the sectioned single-invoice table.
func (e *Exporter) WriteInvoiceCSV(w io.Writer, snap *models.Snapshot) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"Invoice Export"},
		{"Generated on:", e.now().Format("2006-01-02 15:04:05")},
		{},
	}
	rows = append(rows, partyRows("Business Information", snap.BusinessInfo)...)
	rows = append(rows, partyRows("Client Information", snap.ClientInfo)...)
	rows = append(rows,
		[]string{"Invoice Details"},
		[]string{"Invoice Number:", snap.InvoiceNumber},
		[]string{"Invoice Date:", snap.InvoiceDate.String()},
		[]string{"Tax Rate (%):", money.Percent(snap.TaxRate)},
		[]string{"Discount (%):", money.Percent(snap.DiscountRate)},
		[]string{"Payment Terms:", snap.PaymentTerms},
		[]string{},
		[]string{"Items"},
		[]string{"Description", "Quantity", "Unit Price", "Total Price"},
	)
	for _, item := range snap.Items {
		rows = append(rows, []string{
			item.Description,
			strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			money.Dollars(item.UnitPrice),
			money.Dollars(item.Total()),
		})
	}

	totals := snap.Totals
	rows = append(rows,
		[]string{},
		[]string{"Summary"},
		[]string{"Subtotal:", money.Dollars(totals.Subtotal)},
	)
	if snap.DiscountRate > 0 {
		rows = append(rows, []string{"Discount:", money.Dollars(-totals.DiscountAmount)})
	}
	if snap.TaxRate > 0 {
		rows = append(rows, []string{"Tax:", money.Dollars(totals.TaxAmount)})
	}
	rows = append(rows, []string{"Total:", money.Dollars(totals.Total)})

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write invoice csv: %w", err)
	}
	return nil
}

func partyRows(title string, p models.Party) [][]string {
	return [][]string{
		{title},
		{"Name:", p.Name},
		{"Address:", p.Address},
		{"Phone:", p.Phone},
		{"Email:", p.Email},
		{},
	}
}

// ExportInvoice writes <exports>/invoice_<number>.csv and returns its path.
func (e *Exporter) ExportInvoice(ctx context.Context, number string) (string, error) {
	snap, err := e.store.Load(ctx, number)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := e.WriteInvoiceCSV(&buf, snap); err != nil {
		return "", err
	}

	path, err := e.write(storage.RecordName(number)+".csv", buf.Bytes())
	if err != nil {
		return "", err
	}
	slog.Info("Invoice exported", "invoice_number", number, "path", path)
	return path, nil
}

// Collect loads every record in ListKeys order. A malformed record fails the
// whole collection with a PartialData error naming every broken key; a record
// deleted after it was listed is skipped.
func (e *Exporter) Collect(ctx context.Context) ([]*models.Snapshot, error) {
	keys, err := e.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	snaps := make([]*models.Snapshot, 0, len(keys))
	var broken []error
	for _, key := range keys {
		snap, err := e.store.Load(ctx, key)
		switch apperr.KindOf(err) {
		case apperr.KindUnknown:
			if err != nil {
				return nil, err
			}
			snaps = append(snaps, snap)
		case apperr.KindNotFound:
			slog.Warn("Invoice disappeared during export", "invoice_number", key)
		case apperr.KindMalformedRecord:
			broken = append(broken, err)
		default:
			return nil, err
		}
	}

	if len(broken) > 0 {
		return nil, apperr.PartialData("export_all", errors.Join(broken...))
	}
	return snaps, nil
}

// WriteSummary writes one row per snapshot, in the given order.
func WriteSummary(w io.Writer, snaps []*models.Snapshot, format Format) error {
	rows := make([]SummaryRow, len(snaps))
	for i, snap := range snaps {
		rows[i] = Summarize(snap)
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to write summary json: %w", err)
		}
		return nil
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(SummaryColumns); err != nil {
			return fmt.Errorf("failed to write summary header: %w", err)
		}
		for _, r := range rows {
			record := []string{
				r.InvoiceNumber,
				r.InvoiceDate,
				r.ClientName,
				r.ClientAddress,
				money.Dollars(r.Subtotal),
				money.Dollars(r.TaxAmount),
				money.Dollars(r.DiscountAmount),
				money.Dollars(r.Total),
				r.PaymentTerms,
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write summary row: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("failed to flush summary csv: %w", err)
		}
		return nil
	}
	return apperr.Validation("format", "unsupported export format %q", format)
}

// ExportAll writes the aggregate summary of every stored invoice to
// <exports>/all_invoices_summary_YYYYMMDD_HHMMSS.<format>. An empty store
// produces a document with no rows.
func (e *Exporter) ExportAll(ctx context.Context, format Format) (*Result, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	snaps, err := e.Collect(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, snaps, format); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("all_invoices_summary_%s.%s", e.now().Format("20060102_150405"), format)
	path, err := e.write(name, buf.Bytes())
	if err != nil {
		return nil, err
	}

	slog.Info("All invoices exported", "path", path, "format", format, "count", len(snaps))
	return &Result{Path: path, Format: format, Count: len(snaps)}, nil
}

func (e *Exporter) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", apperr.Storage("export", "", fmt.Errorf("failed to create exports directory: %w", err))
	}
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", apperr.Storage("export", "", fmt.Errorf("failed to write %s: %w", name, err))
	}
	return path, nil
}
