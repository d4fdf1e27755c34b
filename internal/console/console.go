// Package console is the interactive, menu-driven front end.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/export"
	"github.com/mmynk/invoicer/internal/money"
	"github.com/mmynk/invoicer/internal/render"
	"github.com/mmynk/invoicer/internal/service"
)

const rule = "------------------------------"

// Console runs invoice workflows against a Manager, prompting for input.
type Console struct {
	manager *service.Manager
	p       *Prompter
	out     io.Writer
}

// New returns a Console reading from in and writing to out.
func New(manager *service.Manager, in io.Reader, out io.Writer) *Console {
	return &Console{manager: manager, p: NewPrompter(in, out), out: out}
}

var menu = []struct {
	label string
	run   func(c *Console, ctx context.Context) error
}{
	{"Create New Invoice", (*Console).Create},
	{"View Existing Invoices", (*Console).List},
	{"Export Invoice to CSV", func(c *Console, ctx context.Context) error { return c.pick(ctx, "export", c.ExportCSV) }},
	{"Export All Invoices Summary", func(c *Console, ctx context.Context) error { return c.ExportAll(ctx, export.FormatCSV) }},
	{"Send Invoice via Email", func(c *Console, ctx context.Context) error { return c.pick(ctx, "send", c.Email) }},
	{"Test Email Connection", (*Console).TestEmail},
	{"Archive Invoice", func(c *Console, ctx context.Context) error { return c.pick(ctx, "archive", c.Archive) }},
}

// Menu shows the numbered menu until the user exits or input ends. A failed
// action is reported and the menu comes back.
func (c *Console) Menu(ctx context.Context) error {
	c.banner()
	exit := len(menu) + 1

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprintln(c.out, "\nChoose an option:")
		for i, item := range menu {
			fmt.Fprintf(c.out, "%d. %s\n", i+1, item.label)
		}
		fmt.Fprintf(c.out, "%d. Exit\n%s\n", exit, rule)

		choice, err := c.p.Ask(fmt.Sprintf("Enter your choice (1-%d): ", exit))
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		var n int
		if _, scanErr := fmt.Sscan(choice, &n); scanErr != nil || n < 1 || n > exit {
			fmt.Fprintf(c.out, "Invalid choice! Please enter 1-%d.\n", exit)
			continue
		}
		if n == exit {
			fmt.Fprintln(c.out, "\nThank you for using Professional Invoice Generator!")
			return nil
		}

		if err := menu[n-1].run(c, ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.Report(err)
		}

		if _, err := c.p.Ask("\nPress Enter to continue..."); errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (c *Console) banner() {
	line := strings.Repeat("=", 60)
	fmt.Fprintf(c.out, "%s\n           PROFESSIONAL INVOICE GENERATOR\n%s\n", line, line)
}

// Report prints err with its hint, if any.
func (c *Console) Report(err error) {
	fmt.Fprintf(c.out, "Error: %v\n", err)
	if hint := apperr.HintOf(err); hint != "" {
		fmt.Fprintf(c.out, "Hint: %s\n", hint)
	}
}

// Create prompts for every invoice field, saves the invoice and renders its PDF.
func (c *Console) Create(ctx context.Context) error {
	fmt.Fprintf(c.out, "\nCreating New Invoice\n%s\n", rule)

	in := &service.CreateInput{}
	var err error

	fmt.Fprintln(c.out, "\nBusiness Information:")
	if in.Business, err = c.askParty("Business", "Business name"); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "\nClient Information:")
	if in.Client, err = c.askParty("Client", "Client name"); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "\nInvoice Details:")
	if in.InvoiceNumber, err = c.p.AskRequired("Invoice Number: ", "Invoice number"); err != nil {
		return err
	}
	if in.InvoiceDate, err = c.p.Ask("Invoice Date (YYYY-MM-DD) or press Enter for today: "); err != nil {
		return err
	}
	if in.TaxRate, err = c.p.AskFloat("Tax Rate (%) or press Enter for 0: ", 0); err != nil {
		return err
	}
	if in.DiscountRate, err = c.p.AskFloat("Discount (%) or press Enter for 0: ", 0); err != nil {
		return err
	}
	if in.PaymentTerms, err = c.p.Ask("Payment Terms (optional): "); err != nil {
		return err
	}

	if in.Items, err = c.askItems(); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "\nGenerating invoice...")
	created, err := c.manager.Create(ctx, in)
	if err != nil {
		return err
	}
	pdfPath, err := c.manager.RenderPDF(ctx, in.InvoiceNumber)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "\nInvoice generated successfully!")
	fmt.Fprintf(c.out, "PDF file: %s\n", pdfPath)
	fmt.Fprintf(c.out, "Data file: %s\n", created.RecordPath)
	fmt.Fprintln(c.out, "\nInvoice Summary:")
	for _, line := range render.TotalsLines(created.Snapshot) {
		fmt.Fprintf(c.out, "   %s %s\n", line.Label, line.Amount)
	}
	return nil
}

func (c *Console) askParty(prefix, what string) (service.PartyInput, error) {
	var p service.PartyInput
	var err error
	if p.Name, err = c.p.AskRequired(prefix+" Name: ", what); err != nil {
		return p, err
	}
	if p.Address, err = c.p.Ask(prefix + " Address: "); err != nil {
		return p, err
	}
	if p.Phone, err = c.p.Ask(prefix + " Phone (optional): "); err != nil {
		return p, err
	}
	if p.Email, err = c.p.Ask(prefix + " Email (optional): "); err != nil {
		return p, err
	}
	return p, nil
}

func (c *Console) askItems() ([]service.ItemInput, error) {
	fmt.Fprintln(c.out, "\nItems/Services:")
	fmt.Fprintln(c.out, "Enter items one by one. Type 'done' when finished.")

	var items []service.ItemInput
	for {
		fmt.Fprintf(c.out, "\n%s\n", strings.Repeat("-", 20))
		desc, err := c.p.Ask("Item Description (or 'done' to finish): ")
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(desc, "done") {
			if len(items) == 0 {
				fmt.Fprintln(c.out, "At least one item is required!")
				continue
			}
			return items, nil
		}
		if desc == "" {
			fmt.Fprintln(c.out, "Description cannot be empty!")
			continue
		}

		qty, err := c.p.AskFloat("Quantity: ", 1)
		if err != nil {
			return nil, err
		}
		price, err := c.p.AskFloat("Unit Price: $", 0)
		if err != nil {
			return nil, err
		}
		items = append(items, service.ItemInput{Description: desc, Quantity: qty, UnitPrice: price})
		fmt.Fprintf(c.out, "Added: %s - Qty: %g - Price: %s\n", desc, qty, money.Format(price))
	}
}

// List prints every stored invoice; unreadable records are reported inline.
func (c *Console) List(ctx context.Context) error {
	rows, err := c.manager.List(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "No invoices found!")
		return nil
	}

	fmt.Fprintf(c.out, "\nFound %d invoices:\n%s\n", len(rows), strings.Repeat("-", 40))
	for _, row := range rows {
		if row.Err != nil {
			fmt.Fprintf(c.out, "Error reading invoice %s: %v\n", row.Number, row.Err)
			continue
		}
		snap := row.Snapshot
		fmt.Fprintf(c.out, "Invoice #%s\n", snap.InvoiceNumber)
		fmt.Fprintf(c.out, "   Date: %s\n", snap.InvoiceDate)
		fmt.Fprintf(c.out, "   Client: %s\n", snap.ClientInfo.Name)
		fmt.Fprintf(c.out, "   Total: %s\n", money.Format(snap.Totals.Total))
		fmt.Fprintf(c.out, "   Items: %d\n\n", len(snap.Items))
	}
	return nil
}

// Show prints one invoice in full.
func (c *Console) Show(ctx context.Context, number string) error {
	snap, err := c.manager.Get(ctx, number)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Invoice #%s  (%s)\n", snap.InvoiceNumber, snap.InvoiceDate)
	fmt.Fprintf(c.out, "From: %s\n", snap.BusinessInfo.Name)
	fmt.Fprintf(c.out, "Bill to: %s\n", snap.ClientInfo.Name)
	if snap.ClientInfo.Address != "" {
		fmt.Fprintf(c.out, "         %s\n", strings.ReplaceAll(snap.ClientInfo.Address, "\n", "\n         "))
	}
	fmt.Fprintln(c.out, rule)
	for _, item := range snap.Items {
		fmt.Fprintf(c.out, "%-30s %8g x %12s = %12s\n",
			item.Description, item.Quantity, money.Format(item.UnitPrice), money.Format(item.Total()))
	}
	fmt.Fprintln(c.out, rule)
	for _, line := range render.TotalsLines(snap) {
		fmt.Fprintf(c.out, "%-20s %s\n", line.Label, line.Amount)
	}
	if snap.PaymentTerms != "" {
		fmt.Fprintf(c.out, "Payment Terms: %s\n", snap.PaymentTerms)
	}
	return nil
}

// Delete removes an invoice.
func (c *Console) Delete(ctx context.Context, number string) error {
	if err := c.manager.Delete(ctx, number); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Invoice %s deleted.\n", number)
	return nil
}

// PDF regenerates the PDF of an invoice.
func (c *Console) PDF(ctx context.Context, number string) error {
	path, err := c.manager.RenderPDF(ctx, number)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "PDF written to: %s\n", path)
	return nil
}

// ExportCSV writes the single-invoice CSV.
func (c *Console) ExportCSV(ctx context.Context, number string) error {
	path, err := c.manager.ExportCSV(ctx, number)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Invoice exported to: %s\n", path)
	return nil
}

// ExportAll writes the summary of every invoice.
func (c *Console) ExportAll(ctx context.Context, format export.Format) error {
	res, err := c.manager.ExportAll(ctx, format)
	if err != nil {
		return err
	}
	if res.Count == 0 {
		fmt.Fprintf(c.out, "No invoices found; wrote an empty summary to: %s\n", res.Path)
		return nil
	}
	fmt.Fprintf(c.out, "All %d invoices exported to: %s\n", res.Count, res.Path)
	return nil
}

// Email sends an invoice, prompting for the SMTP account when none is
// configured and for the recipient.
func (c *Console) Email(ctx context.Context, number string) error {
	if err := c.ensureCredentials(); err != nil {
		return err
	}
	to, err := c.p.AskRequired("Recipient email address: ", "Recipient email")
	if err != nil {
		return err
	}

	if _, err := c.manager.SendEmail(ctx, service.EmailInput{Number: number, To: to}); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Invoice %s sent to %s.\n", number, to)
	return nil
}

// TestEmail checks the SMTP login.
func (c *Console) TestEmail(ctx context.Context) error {
	if err := c.ensureCredentials(); err != nil {
		return err
	}
	if err := c.manager.TestEmail(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "SMTP connection successful! Your email configuration is working.")
	return nil
}

func (c *Console) ensureCredentials() error {
	creds := c.manager.Credentials()
	if creds.Username != "" && creds.Password != "" {
		return nil
	}

	fmt.Fprintln(c.out, "\nEmail Configuration:")
	var err error
	if creds.Username, err = c.p.AskRequired("Your email address: ", "Email address"); err != nil {
		return err
	}
	if creds.Password, err = c.p.AskRequired("Your email password (app password): ", "Password"); err != nil {
		return err
	}
	c.manager.SetCredentials(creds)
	return nil
}

// Archive uploads an invoice to object storage.
func (c *Console) Archive(ctx context.Context, number string) error {
	keys, err := c.manager.Archive(ctx, number)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Invoice archived:")
	for _, key := range keys {
		fmt.Fprintf(c.out, "   %s\n", key)
	}
	return nil
}

// pick lists the stored invoice numbers and asks which one to act on.
func (c *Console) pick(ctx context.Context, verb string, run func(context.Context, string) error) error {
	rows, err := c.manager.List(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "No invoices found!")
		return nil
	}

	numbers := make([]string, len(rows))
	for i, row := range rows {
		numbers[i] = row.Number
	}
	fmt.Fprintf(c.out, "\nAvailable invoices: %s\n", strings.Join(numbers, ", "))

	number, err := c.p.Ask(fmt.Sprintf("Enter invoice number to %s: ", verb))
	if err != nil {
		return err
	}
	return run(ctx, number)
}
