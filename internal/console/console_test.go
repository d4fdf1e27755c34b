package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/internal/storage"
	"github.com/mmynk/invoicer/internal/storage/filestore"
)

func newTestConsole(t *testing.T, input string) (*Console, *service.Manager, *bytes.Buffer, storage.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := storage.Config{
		RecordsPath: filepath.Join(dir, "invoices"),
		ExportsPath: filepath.Join(dir, "exports"),
		Driver:      storage.DriverFile,
	}
	store, err := filestore.New(cfg)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	now := func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	manager := service.NewManager(store, cfg, service.WithClock(now))

	var out bytes.Buffer
	return New(manager, strings.NewReader(input), &out), manager, &out, cfg
}

func lines(answers ...string) string {
	return strings.Join(answers, "\n") + "\n"
}

func TestCreateInteractive(t *testing.T) {
	input := lines(
		"Acme Studio", "1 Main St", "555-0100", "billing@acme.test",
		"", "Globex", "9 Side Rd", "", "",
		"INV-001", "", "abc", "8.5", "5", "Net 30",
		"", "Website", "1", "2500",
		"SEO", "3", "200",
		"Logo", "1", "500",
		"Domain", "1", "15",
		"Hosting", "1", "120",
		"done",
	)
	c, manager, out, cfg := newTestConsole(t, input)

	if err := c.Create(context.Background()); err != nil {
		t.Fatalf("Create failed: %v\n%s", err, out)
	}

	got := out.String()
	for _, want := range []string{
		"Client name is required!",
		"Please enter a valid number",
		"Description cannot be empty!",
		"Invoice generated successfully!",
		"Subtotal: $3,735.00",
		"Discount (5%): -$186.75",
		"Tax (8.5%): $301.60",
		"TOTAL: $3,849.85",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}

	snap, err := manager.Get(context.Background(), "INV-001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.InvoiceDate.String() != "2024-06-01" {
		t.Errorf("expected today's date, got %s", snap.InvoiceDate)
	}
	if len(snap.Items) != 5 || snap.Items[1].Description != "SEO" {
		t.Errorf("items not kept in entry order: %+v", snap.Items)
	}
	if _, err := os.Stat(filepath.Join(cfg.RecordsPath, "invoice_INV-001.pdf")); err != nil {
		t.Errorf("expected PDF next to the record: %v", err)
	}
}

func TestCreateRequiresAnItem(t *testing.T) {
	input := lines(
		"Acme", "", "", "",
		"Globex", "", "", "",
		"INV-2", "2024-01-31", "", "", "",
		"done", "Widget", "", "10", "done",
	)
	c, manager, out, _ := newTestConsole(t, input)

	if err := c.Create(context.Background()); err != nil {
		t.Fatalf("Create failed: %v\n%s", err, out)
	}
	if !strings.Contains(out.String(), "At least one item is required!") {
		t.Error("expected a prompt for at least one item")
	}

	snap, err := manager.Get(context.Background(), "INV-2")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Items[0].Quantity != 1 || snap.Totals.Total != 10 {
		t.Errorf("expected default quantity 1 and total 10, got %+v", snap)
	}
}

func TestCreateRejectsBadDate(t *testing.T) {
	input := lines(
		"Acme", "", "", "",
		"Globex", "", "", "",
		"INV-3", "31/01/2024", "", "", "",
		"Widget", "1", "10", "done",
	)
	c, _, _, _ := newTestConsole(t, input)

	err := c.Create(context.Background())
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateStopsAtEOF(t *testing.T) {
	c, _, _, _ := newTestConsole(t, lines("Acme", "1 Main St"))

	if err := c.Create(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestMenu(t *testing.T) {
	input := lines(
		"9",     // invalid
		"2", "", // list: empty store
		"4", "", // export all
		"3", "", // export: nothing to pick
		"8",
	)
	c, _, out, cfg := newTestConsole(t, input)

	if err := c.Menu(context.Background()); err != nil {
		t.Fatalf("Menu failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"PROFESSIONAL INVOICE GENERATOR",
		"Invalid choice! Please enter 1-8.",
		"No invoices found!",
		"No invoices found; wrote an empty summary",
		"Thank you for using Professional Invoice Generator!",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}

	entries, err := os.ReadDir(cfg.ExportsPath)
	if err != nil || len(entries) != 1 {
		t.Errorf("expected one summary file, got %v (err %v)", entries, err)
	}
}

func TestMenuReportsErrorsAndContinues(t *testing.T) {
	c, manager, out, _ := newTestConsole(t, lines("3", "INV-404", "", "8"))
	if _, err := manager.Create(context.Background(), &service.CreateInput{
		Business:      service.PartyInput{Name: "Acme"},
		Client:        service.PartyInput{Name: "Globex"},
		InvoiceNumber: "INV-1",
	}); err != nil {
		t.Fatal(err)
	}

	if err := c.Menu(context.Background()); err != nil {
		t.Fatalf("Menu failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Available invoices: INV-1") {
		t.Errorf("expected invoice list\n%s", got)
	}
	if !strings.Contains(got, `Error: load: not_found "INV-404"`) {
		t.Errorf("expected not found error\n%s", got)
	}
	if !strings.Contains(got, "Thank you for using") {
		t.Error("expected the menu to keep running after the error")
	}
}

func TestMenuEndsOnEOF(t *testing.T) {
	c, _, _, _ := newTestConsole(t, "")
	if err := c.Menu(context.Background()); err != nil {
		t.Errorf("expected clean exit at end of input, got %v", err)
	}
}

func TestEmailWithoutAccountPrompts(t *testing.T) {
	c, manager, out, _ := newTestConsole(t, lines("me@acme.test", "secret", "not-an-email"))

	err := c.Email(context.Background(), "INV-1")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for recipient, got %v", err)
	}
	if creds := manager.Credentials(); creds.Username != "me@acme.test" || creds.Password != "secret" {
		t.Errorf("expected prompted credentials to be kept, got %+v", creds)
	}
	if !strings.Contains(out.String(), "Email Configuration:") {
		t.Error("expected email configuration prompt")
	}
}

func TestShow(t *testing.T) {
	c, manager, out, _ := newTestConsole(t, "")
	if _, err := manager.Create(context.Background(), &service.CreateInput{
		Business:      service.PartyInput{Name: "Acme"},
		Client:        service.PartyInput{Name: "Globex", Address: "9 Side Rd\nSpringfield"},
		InvoiceNumber: "INV-5",
		InvoiceDate:   "2024-02-29",
		Items:         []service.ItemInput{{Description: "Widget", Quantity: 2, UnitPrice: 1250}},
		TaxRate:       10,
		PaymentTerms:  "Net 15",
	}); err != nil {
		t.Fatal(err)
	}

	if err := c.Show(context.Background(), "INV-5"); err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Invoice #INV-5  (2024-02-29)", "Springfield", "$2,500.00", "TOTAL:", "$2,750.00", "Payment Terms: Net 15"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}
