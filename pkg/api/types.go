// Package api defines the invoicer.v1 wire messages exchanged over Connect.
//
// Messages are plain structs encoded as JSON; field names match the invoice
// record format so a saved record and a GetInvoice response look the same.
package api

type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	// TotalPrice is filled in responses and ignored in requests.
	TotalPrice float64 `json:"total_price,omitempty"`
}

type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxableAmount  float64 `json:"taxable_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	Total          float64 `json:"total"`
}

// TotalsLine is one printed row of the totals block, e.g. {"Tax (8.5%):", "$301.60"}.
type TotalsLine struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

type Invoice struct {
	BusinessInfo  Party      `json:"business_info"`
	ClientInfo    Party      `json:"client_info"`
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   string     `json:"invoice_date"`
	Items         []LineItem `json:"items"`
	TaxRate       float64    `json:"tax_rate"`
	Discount      float64    `json:"discount"`
	PaymentTerms  string     `json:"payment_terms"`
	Totals        Totals     `json:"totals"`
}

// InvoiceSummary is one row of ListInvoices. Error is set instead of the
// other fields when the stored record could not be read.
type InvoiceSummary struct {
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date,omitempty"`
	ClientName    string  `json:"client_name,omitempty"`
	Total         float64 `json:"total"`
	Error         string  `json:"error,omitempty"`
}

type CreateInvoiceRequest struct {
	BusinessInfo  Party      `json:"business_info"`
	ClientInfo    Party      `json:"client_info"`
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   string     `json:"invoice_date,omitempty"`
	Items         []LineItem `json:"items"`
	TaxRate       float64    `json:"tax_rate"`
	Discount      float64    `json:"discount"`
	PaymentTerms  string     `json:"payment_terms"`
	// RenderPdf also writes the PDF next to the record.
	RenderPdf bool `json:"render_pdf"`
}

type CreateInvoiceResponse struct {
	Invoice *Invoice `json:"invoice"`
	PdfPath string   `json:"pdf_path,omitempty"`
}

type PreviewTotalsRequest struct {
	Items    []LineItem `json:"items"`
	TaxRate  float64    `json:"tax_rate"`
	Discount float64    `json:"discount"`
}

type PreviewTotalsResponse struct {
	Totals Totals       `json:"totals"`
	Lines  []TotalsLine `json:"lines"`
}

type GetInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
}

type GetInvoiceResponse struct {
	Invoice *Invoice `json:"invoice"`
}

type ListInvoicesRequest struct{}

type ListInvoicesResponse struct {
	Invoices []*InvoiceSummary `json:"invoices"`
}

type DeleteInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
}

type DeleteInvoiceResponse struct{}

type ExportAllRequest struct {
	// Format is "csv" (default) or "json".
	Format string `json:"format"`
}

type ExportAllResponse struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Count  int    `json:"count"`
}

type SendEmailRequest struct {
	InvoiceNumber string `json:"invoice_number"`
	To            string `json:"to"`
	Subject       string `json:"subject,omitempty"`
	Body          string `json:"body,omitempty"`
}

type SendEmailResponse struct {
	PdfPath string `json:"pdf_path"`
}

type TestEmailRequest struct{}

type TestEmailResponse struct {
	Host     string `json:"host"`
	Username string `json:"username"`
}

type ArchiveInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
}

type ArchiveInvoiceResponse struct {
	Keys []string `json:"keys"`
}

// GetInvoiceNumber lets interceptors tag a call with the invoice it targets.
func (x *CreateInvoiceRequest) GetInvoiceNumber() string  { return x.InvoiceNumber }
func (x *GetInvoiceRequest) GetInvoiceNumber() string     { return x.InvoiceNumber }
func (x *DeleteInvoiceRequest) GetInvoiceNumber() string  { return x.InvoiceNumber }
func (x *SendEmailRequest) GetInvoiceNumber() string      { return x.InvoiceNumber }
func (x *ArchiveInvoiceRequest) GetInvoiceNumber() string { return x.InvoiceNumber }
