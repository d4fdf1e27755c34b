package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/invoicer/internal/export"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/pkg/api"
)

// InvoiceService implements the Connect InvoiceService
type InvoiceService struct {
	api.UnimplementedInvoiceServiceHandler
	manager *Manager
}

// NewInvoiceService creates a new InvoiceService backed by manager.
func NewInvoiceService(manager *Manager) *InvoiceService {
	return &InvoiceService{manager: manager}
}

// CreateInvoice validates, finalizes and saves an invoice.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req *connect.Request[api.CreateInvoiceRequest]) (*connect.Response[api.CreateInvoiceResponse], error) {
	slog.Info("CreateInvoice request received",
		"invoice_number", req.Msg.InvoiceNumber,
		"items_count", len(req.Msg.Items),
	)

	in := createInputFromAPI(req.Msg)
	created, err := s.manager.Create(ctx, in)
	if err != nil {
		slog.Error("CreateInvoice failed", "invoice_number", req.Msg.InvoiceNumber, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.CreateInvoiceResponse{Invoice: invoiceToAPI(created.Snapshot)}
	if req.Msg.RenderPdf {
		path, err := s.manager.RenderPDF(ctx, created.Snapshot.InvoiceNumber)
		if err != nil {
			slog.Error("CreateInvoice PDF failed", "invoice_number", req.Msg.InvoiceNumber, "error", err)
			return nil, toConnectError(err)
		}
		resp.PdfPath = path
	}

	return connect.NewResponse(resp), nil
}

// PreviewTotals computes totals for a draft; nothing is saved.
func (s *InvoiceService) PreviewTotals(ctx context.Context, req *connect.Request[api.PreviewTotalsRequest]) (*connect.Response[api.PreviewTotalsResponse], error) {
	items := make([]ItemInput, len(req.Msg.Items))
	for i, item := range req.Msg.Items {
		items[i] = ItemInput{Description: item.Description, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}

	totals, lines := s.manager.Preview(items, req.Msg.TaxRate, req.Msg.Discount)

	resp := &api.PreviewTotalsResponse{
		Totals: api.Totals(totals),
		Lines:  make([]api.TotalsLine, len(lines)),
	}
	for i, line := range lines {
		resp.Lines[i] = api.TotalsLine{Label: line.Label, Amount: line.Amount}
	}
	return connect.NewResponse(resp), nil
}

// GetInvoice retrieves an invoice by number.
func (s *InvoiceService) GetInvoice(ctx context.Context, req *connect.Request[api.GetInvoiceRequest]) (*connect.Response[api.GetInvoiceResponse], error) {
	slog.Info("GetInvoice request received", "invoice_number", req.Msg.InvoiceNumber)

	snap, err := s.manager.Get(ctx, req.Msg.InvoiceNumber)
	if err != nil {
		slog.Error("GetInvoice failed", "invoice_number", req.Msg.InvoiceNumber, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetInvoiceResponse{Invoice: invoiceToAPI(snap)}), nil
}

// ListInvoices summarizes every stored invoice.
func (s *InvoiceService) ListInvoices(ctx context.Context, req *connect.Request[api.ListInvoicesRequest]) (*connect.Response[api.ListInvoicesResponse], error) {
	rows, err := s.manager.List(ctx)
	if err != nil {
		slog.Error("ListInvoices failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.InvoiceSummary, len(rows))
	for i, row := range rows {
		sum := &api.InvoiceSummary{InvoiceNumber: row.Number}
		if row.Err != nil {
			sum.Error = row.Err.Error()
		} else {
			sum.InvoiceDate = row.Snapshot.InvoiceDate.String()
			sum.ClientName = row.Snapshot.ClientInfo.Name
			sum.Total = row.Snapshot.Totals.Total
		}
		out[i] = sum
	}

	slog.Info("ListInvoices successful", "count", len(out))
	return connect.NewResponse(&api.ListInvoicesResponse{Invoices: out}), nil
}

// DeleteInvoice removes an invoice and its PDF.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, req *connect.Request[api.DeleteInvoiceRequest]) (*connect.Response[api.DeleteInvoiceResponse], error) {
	slog.Info("DeleteInvoice request received", "invoice_number", req.Msg.InvoiceNumber)

	if err := s.manager.Delete(ctx, req.Msg.InvoiceNumber); err != nil {
		slog.Error("DeleteInvoice failed", "invoice_number", req.Msg.InvoiceNumber, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeleteInvoiceResponse{}), nil
}

// ExportAll writes the aggregate summary file on the server.
func (s *InvoiceService) ExportAll(ctx context.Context, req *connect.Request[api.ExportAllRequest]) (*connect.Response[api.ExportAllResponse], error) {
	slog.Info("ExportAll request received", "format", req.Msg.Format)

	res, err := s.manager.ExportAll(ctx, export.Format(req.Msg.Format))
	if err != nil {
		slog.Error("ExportAll failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ExportAllResponse{
		Path:   res.Path,
		Format: string(res.Format),
		Count:  res.Count,
	}), nil
}

// SendEmail mails an invoice PDF.
func (s *InvoiceService) SendEmail(ctx context.Context, req *connect.Request[api.SendEmailRequest]) (*connect.Response[api.SendEmailResponse], error) {
	slog.Info("SendEmail request received", "invoice_number", req.Msg.InvoiceNumber, "to", req.Msg.To)

	path, err := s.manager.SendEmail(ctx, EmailInput{
		Number:  req.Msg.InvoiceNumber,
		To:      req.Msg.To,
		Subject: req.Msg.Subject,
		Body:    req.Msg.Body,
	})
	if err != nil {
		slog.Error("SendEmail failed", "invoice_number", req.Msg.InvoiceNumber, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SendEmailResponse{PdfPath: path}), nil
}

// TestEmail logs in to the configured SMTP account without sending.
func (s *InvoiceService) TestEmail(ctx context.Context, req *connect.Request[api.TestEmailRequest]) (*connect.Response[api.TestEmailResponse], error) {
	if err := s.manager.TestEmail(ctx); err != nil {
		slog.Error("TestEmail failed", "error", err)
		return nil, toConnectError(err)
	}
	creds := s.manager.Credentials()
	return connect.NewResponse(&api.TestEmailResponse{Host: creds.Host, Username: creds.Username}), nil
}

// ArchiveInvoice copies an invoice to object storage.
func (s *InvoiceService) ArchiveInvoice(ctx context.Context, req *connect.Request[api.ArchiveInvoiceRequest]) (*connect.Response[api.ArchiveInvoiceResponse], error) {
	slog.Info("ArchiveInvoice request received", "invoice_number", req.Msg.InvoiceNumber)

	keys, err := s.manager.Archive(ctx, req.Msg.InvoiceNumber)
	if err != nil {
		slog.Error("ArchiveInvoice failed", "invoice_number", req.Msg.InvoiceNumber, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ArchiveInvoiceResponse{Keys: keys}), nil
}

func createInputFromAPI(msg *api.CreateInvoiceRequest) *CreateInput {
	items := make([]ItemInput, len(msg.Items))
	for i, item := range msg.Items {
		items[i] = ItemInput{Description: item.Description, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return &CreateInput{
		Business:      PartyInput(msg.BusinessInfo),
		Client:        PartyInput(msg.ClientInfo),
		InvoiceNumber: msg.InvoiceNumber,
		InvoiceDate:   msg.InvoiceDate,
		Items:         items,
		TaxRate:       msg.TaxRate,
		DiscountRate:  msg.Discount,
		PaymentTerms:  msg.PaymentTerms,
	}
}

func invoiceToAPI(snap *models.Snapshot) *api.Invoice {
	items := make([]api.LineItem, len(snap.Items))
	for i, item := range snap.Items {
		items[i] = api.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.Total(),
		}
	}
	return &api.Invoice{
		BusinessInfo:  api.Party(snap.BusinessInfo),
		ClientInfo:    api.Party(snap.ClientInfo),
		InvoiceNumber: snap.InvoiceNumber,
		InvoiceDate:   snap.InvoiceDate.String(),
		Items:         items,
		TaxRate:       snap.TaxRate,
		Discount:      snap.DiscountRate,
		PaymentTerms:  snap.PaymentTerms,
		Totals:        api.Totals(snap.Totals),
	}
}
