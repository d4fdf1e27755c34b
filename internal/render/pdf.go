// Package render lays out invoice snapshots as PDF documents.
package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/money"
	"github.com/mmynk/invoicer/internal/storage"
)

// Item table column widths in mm.
const (
	colDescription = 80.0
	colQuantity    = 25.0
	colUnitPrice   = 30.0
	colTotal       = 30.0
	labelWidth     = colDescription + colQuantity + colUnitPrice
	halfWidth      = 95.0
)

// TotalsLine is one label/amount row under the items table.
type TotalsLine struct {
	Label  string
	Amount string
	Grand  bool
}

// TotalsLines returns the rows printed under the items table. Discount and
// tax rows only appear when their rate is positive.
func TotalsLines(snap *models.Snapshot) []TotalsLine {
	t := snap.Totals
	lines := []TotalsLine{{Label: "Subtotal:", Amount: money.Format(t.Subtotal)}}
	if snap.DiscountRate > 0 {
		lines = append(lines, TotalsLine{
			Label:  fmt.Sprintf("Discount (%s%%):", money.Percent(snap.DiscountRate)),
			Amount: money.Format(-t.DiscountAmount),
		})
	}
	if snap.TaxRate > 0 {
		lines = append(lines, TotalsLine{
			Label:  fmt.Sprintf("Tax (%s%%):", money.Percent(snap.TaxRate)),
			Amount: money.Format(t.TaxAmount),
		})
	}
	return append(lines, TotalsLine{Label: "TOTAL:", Amount: money.Format(t.Total), Grand: true})
}

// Renderer writes invoice PDFs next to the invoice records.
type Renderer struct {
	dir string
}

// New returns a renderer that writes into dir.
func New(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Path returns where the PDF for number is written.
func (r *Renderer) Path(number string) string {
	return filepath.Join(r.dir, storage.RecordName(number)+".pdf")
}

// WriteFile renders snap and writes <dir>/invoice_<number>.pdf.
func (r *Renderer) WriteFile(snap *models.Snapshot) (string, error) {
	data, err := PDF(snap)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", apperr.Storage("render", snap.InvoiceNumber, fmt.Errorf("failed to create directory: %w", err))
	}
	path := r.Path(snap.InvoiceNumber)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", apperr.Storage("render", snap.InvoiceNumber, fmt.Errorf("failed to write pdf: %w", err))
	}
	slog.Info("Invoice PDF written", "invoice_number", snap.InvoiceNumber, "path", path, "bytes", len(data))
	return path, nil
}

// PDF renders snap as an A4 invoice.
func PDF(snap *models.Snapshot) ([]byte, error) {
	if err := storage.CheckKey(snap.InvoiceNumber); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle("Invoice "+snap.InvoiceNumber, true)
	pdf.SetCreator("invoicer", true)
	// Same record, same bytes.
	pdf.SetCreationDate(snap.InvoiceDate.Time())
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	// Business block
	b := snap.BusinessInfo
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, tr(b.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if b.Address != "" {
		pdf.MultiCell(0, 6, tr(b.Address), "", "L", false)
	}
	if b.Phone != "" {
		pdf.CellFormat(0, 6, tr("Phone: "+b.Phone), "", 1, "L", false, 0, "")
	}
	if b.Email != "" {
		pdf.CellFormat(0, 6, tr("Email: "+b.Email), "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	// Invoice details on the left, bill-to on the right
	c := snap.ClientInfo
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(halfWidth, 6, tr("Invoice Number: "+snap.InvoiceNumber), "", 0, "L", false, 0, "")
	pdf.CellFormat(halfWidth, 6, "BILL TO:", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(halfWidth, 6, "Invoice Date: "+snap.InvoiceDate.String(), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(halfWidth, 6, tr(c.Name), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	var right []string
	if c.Address != "" {
		right = append(right, strings.Split(c.Address, "\n")...)
	}
	if c.Phone != "" {
		right = append(right, "Phone: "+c.Phone)
	}
	if c.Email != "" {
		right = append(right, "Email: "+c.Email)
	}
	for _, line := range right {
		pdf.CellFormat(halfWidth, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(halfWidth, 6, tr(strings.TrimSpace(line)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(colDescription, 8, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colQuantity, 8, "Quantity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colUnitPrice, 8, "Unit Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colTotal, 8, "Total", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, item := range snap.Items {
		pdf.CellFormat(colDescription, 8, fit(pdf, tr(item.Description), colDescription-2), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQuantity, 8, strconv.FormatFloat(item.Quantity, 'f', -1, 64), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colUnitPrice, 8, money.Format(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 8, money.Format(item.Total()), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// Totals
	for _, line := range TotalsLines(snap) {
		h := 8.0
		if line.Grand {
			h = 10
			pdf.SetFont("Arial", "B", 12)
		} else {
			pdf.SetFont("Arial", "B", 10)
		}
		pdf.CellFormat(labelWidth, h, line.Label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, h, line.Amount, "1", 1, "R", false, 0, "")
	}

	if snap.PaymentTerms != "" {
		pdf.Ln(10)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 8, "Payment Terms:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, tr(snap.PaymentTerms), "", "L", false)
	}

	// Footer
	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 6, "Thank you for your business!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", snap.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

// fit shortens s with an ellipsis until it is at most width mm wide. s must
// already be translated to the font's single-byte encoding, so it is cut by
// bytes, not runes.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	n := len(s)
	for n > 0 && pdf.GetStringWidth(s[:n]+"...") > width {
		n--
	}
	return s[:n] + "..."
}
