package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/archive"
	"github.com/mmynk/invoicer/internal/calculator"
	"github.com/mmynk/invoicer/internal/export"
	"github.com/mmynk/invoicer/internal/mailer"
	"github.com/mmynk/invoicer/internal/metrics"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/render"
	"github.com/mmynk/invoicer/internal/storage"
)

// Manager runs the invoice workflows shared by the CLI and the RPC service:
// create, look up, render, export, email and archive.
type Manager struct {
	store    storage.Store
	renderer *render.Renderer
	exporter *export.Exporter
	sender   *mailer.Sender
	creds    mailer.Credentials
	archiver *archive.Archiver
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithMailer sets the SMTP sender and the account it sends from.
func WithMailer(sender *mailer.Sender, creds mailer.Credentials) Option {
	return func(m *Manager) {
		m.sender = sender
		m.creds = creds
	}
}

// WithArchiver enables ArchiveInvoice.
func WithArchiver(a *archive.Archiver) Option {
	return func(m *Manager) { m.archiver = a }
}

// WithClock overrides the clock used for default invoice dates and export names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager over store. PDFs are written to
// cfg.RecordsPath and exports to cfg.ExportsPath.
func NewManager(store storage.Store, cfg storage.Config, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		renderer: render.New(cfg.RecordsPath),
		sender:   mailer.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.exporter = export.New(store, cfg.ExportsPath, export.WithClock(m.now))
	return m
}

// Credentials returns the SMTP account the manager sends from.
func (m *Manager) Credentials() mailer.Credentials { return m.creds }

// SetCredentials replaces the SMTP account, e.g. after prompting the user.
func (m *Manager) SetCredentials(creds mailer.Credentials) { m.creds = creds }

// Created is the outcome of Create.
type Created struct {
	Snapshot   *models.Snapshot
	RecordPath string
}

// Create validates in, finalizes the invoice and saves it. An existing
// invoice with the same number is replaced.
func (m *Manager) Create(ctx context.Context, in *CreateInput) (*Created, error) {
	snap, err := in.Build(models.WithClock(m.now))
	if err != nil {
		return nil, err
	}

	path, err := m.store.Save(ctx, snap)
	if err != nil {
		return nil, err
	}
	metrics.InvoicesSaved.Inc()

	slog.Info("Invoice created",
		"invoice_number", snap.InvoiceNumber,
		"client", snap.ClientInfo.Name,
		"items", len(snap.Items),
		"total", snap.Totals.Total,
	)
	return &Created{Snapshot: snap, RecordPath: path}, nil
}

// Preview computes totals for a draft without saving anything. Items are
// not validated, so a half-filled form still previews.
func (m *Manager) Preview(items []ItemInput, taxRate, discountRate float64) (calculator.Totals, []render.TotalsLine) {
	calc := make([]calculator.Item, len(items))
	for i, item := range items {
		calc[i] = calculator.Item{Description: item.Description, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	totals := calculator.ComputeTotals(calc, taxRate, discountRate)
	lines := render.TotalsLines(&models.Snapshot{TaxRate: taxRate, DiscountRate: discountRate, Totals: totals})
	return totals, lines
}

// Get loads one invoice.
func (m *Manager) Get(ctx context.Context, number string) (*models.Snapshot, error) {
	return m.store.Load(ctx, number)
}

// Summary is one row of List. Err is set when the record exists but could
// not be read; Snapshot is nil then.
type Summary struct {
	Number   string
	Snapshot *models.Snapshot
	Err      error
}

// List returns every stored invoice in key order. Unreadable records are
// reported in their row rather than failing the listing.
func (m *Manager) List(ctx context.Context) ([]Summary, error) {
	keys, err := m.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]Summary, 0, len(keys))
	for _, key := range keys {
		snap, err := m.store.Load(ctx, key)
		switch apperr.KindOf(err) {
		case apperr.KindUnknown:
			if err != nil {
				return nil, err
			}
			rows = append(rows, Summary{Number: key, Snapshot: snap})
		case apperr.KindNotFound:
			// deleted since ListKeys
		case apperr.KindMalformedRecord:
			slog.Warn("Unreadable invoice record", "invoice_number", key, "error", err)
			rows = append(rows, Summary{Number: key, Err: err})
		default:
			return nil, err
		}
	}
	return rows, nil
}

// Delete removes the record and its rendered PDF, if any.
func (m *Manager) Delete(ctx context.Context, number string) error {
	if err := m.store.Delete(ctx, number); err != nil {
		return err
	}
	if err := os.Remove(m.renderer.Path(number)); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to remove invoice PDF", "invoice_number", number, "error", err)
	}
	slog.Info("Invoice deleted", "invoice_number", number)
	return nil
}

// RenderPDF regenerates the PDF for a stored invoice and returns its path.
func (m *Manager) RenderPDF(ctx context.Context, number string) (string, error) {
	snap, err := m.store.Load(ctx, number)
	if err != nil {
		return "", err
	}
	path, err := m.renderer.WriteFile(snap)
	metrics.ExportsTotal.WithLabelValues("pdf", metrics.Result(err)).Inc()
	return path, err
}

// PDF renders a stored invoice in memory.
func (m *Manager) PDF(ctx context.Context, number string) ([]byte, error) {
	snap, err := m.store.Load(ctx, number)
	if err != nil {
		return nil, err
	}
	data, err := render.PDF(snap)
	metrics.ExportsTotal.WithLabelValues("pdf", metrics.Result(err)).Inc()
	return data, err
}

// ExportCSV writes the single-invoice CSV and returns its path.
func (m *Manager) ExportCSV(ctx context.Context, number string) (string, error) {
	path, err := m.exporter.ExportInvoice(ctx, number)
	metrics.ExportsTotal.WithLabelValues("invoice_csv", metrics.Result(err)).Inc()
	return path, err
}

// WriteInvoiceCSV writes the single-invoice CSV for number to w.
func (m *Manager) WriteInvoiceCSV(ctx context.Context, number string, w io.Writer) error {
	snap, err := m.store.Load(ctx, number)
	if err != nil {
		return err
	}
	err = m.exporter.WriteInvoiceCSV(w, snap)
	metrics.ExportsTotal.WithLabelValues("invoice_csv", metrics.Result(err)).Inc()
	return err
}

// WriteSummary writes the aggregate summary of every invoice to w and
// returns the format used.
func (m *Manager) WriteSummary(ctx context.Context, format export.Format, w io.Writer) (export.Format, error) {
	format, err := export.ParseFormat(string(format))
	if err != nil {
		return "", err
	}
	snaps, err := m.exporter.Collect(ctx)
	if err == nil {
		err = export.WriteSummary(w, snaps, format)
	}
	metrics.ExportsTotal.WithLabelValues("summary_"+string(format), metrics.Result(err)).Inc()
	return format, err
}

// ExportAll writes the aggregate summary of every invoice.
func (m *Manager) ExportAll(ctx context.Context, format export.Format) (*export.Result, error) {
	format, err := export.ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	res, err := m.exporter.ExportAll(ctx, format)
	metrics.ExportsTotal.WithLabelValues("summary_"+string(format), metrics.Result(err)).Inc()
	return res, err
}

// EmailInput addresses one invoice email. Subject and Body fall back to the
// standard wording when empty.
type EmailInput struct {
	Number  string
	To      string
	Subject string
	Body    string
}

// SendEmail re-renders the invoice PDF from the stored record, mails it and
// returns the path of the attached PDF.
func (m *Manager) SendEmail(ctx context.Context, in EmailInput) (string, error) {
	if err := m.checkCredentials(); err != nil {
		return "", err
	}
	if err := validate.Var(in.To, "required,email"); err != nil {
		return "", apperr.Validation("recipient_email", "%q is not a valid email address", in.To)
	}

	snap, err := m.store.Load(ctx, in.Number)
	if err != nil {
		return "", err
	}

	// The record may have been overwritten since the PDF on disk was made.
	pdfPath, err := m.renderer.WriteFile(snap)
	if err != nil {
		return "", err
	}

	err = m.sender.SendInvoice(ctx, m.creds, mailer.Invoice{
		Snapshot: snap,
		PDFPath:  pdfPath,
		To:       in.To,
		Subject:  in.Subject,
		Body:     in.Body,
	})
	metrics.EmailsTotal.WithLabelValues(emailResult(err)).Inc()
	if err != nil {
		return "", err
	}
	return pdfPath, nil
}

// TestEmail checks that the configured SMTP account can log in.
func (m *Manager) TestEmail(ctx context.Context) error {
	if err := m.checkCredentials(); err != nil {
		return err
	}
	return m.sender.TestConnection(ctx, m.creds)
}

func (m *Manager) checkCredentials() error {
	if m.creds.Username == "" || m.creds.Password == "" {
		return apperr.Validation("smtp", "sender email and password are required")
	}
	return nil
}

func emailResult(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}

// Archive uploads the record and a freshly rendered PDF to object storage and
// returns the object keys.
func (m *Manager) Archive(ctx context.Context, number string) ([]string, error) {
	if m.archiver == nil {
		return nil, apperr.Validation("archive.bucket", "archiving is not configured")
	}
	snap, err := m.store.Load(ctx, number)
	if err != nil {
		return nil, err
	}
	pdf, err := render.PDF(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf for archive: %w", err)
	}
	return m.archiver.ArchiveInvoice(ctx, snap, pdf)
}
