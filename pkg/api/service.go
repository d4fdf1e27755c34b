package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// InvoiceServiceName is the fully-qualified name of the InvoiceService service.
const InvoiceServiceName = "invoicer.v1.InvoiceService"

// These constants are the fully-qualified names of the RPCs defined in this package. They're
// exposed at runtime as Spec.Procedure and as the final two segments of the HTTP route.
const (
	InvoiceServiceCreateInvoiceProcedure  = "/invoicer.v1.InvoiceService/CreateInvoice"
	InvoiceServicePreviewTotalsProcedure  = "/invoicer.v1.InvoiceService/PreviewTotals"
	InvoiceServiceGetInvoiceProcedure     = "/invoicer.v1.InvoiceService/GetInvoice"
	InvoiceServiceListInvoicesProcedure   = "/invoicer.v1.InvoiceService/ListInvoices"
	InvoiceServiceDeleteInvoiceProcedure  = "/invoicer.v1.InvoiceService/DeleteInvoice"
	InvoiceServiceExportAllProcedure      = "/invoicer.v1.InvoiceService/ExportAll"
	InvoiceServiceSendEmailProcedure      = "/invoicer.v1.InvoiceService/SendEmail"
	InvoiceServiceTestEmailProcedure      = "/invoicer.v1.InvoiceService/TestEmail"
	InvoiceServiceArchiveInvoiceProcedure = "/invoicer.v1.InvoiceService/ArchiveInvoice"
)

// InvoiceServiceHandler is implemented by the server.
type InvoiceServiceHandler interface {
	CreateInvoice(context.Context, *connect.Request[CreateInvoiceRequest]) (*connect.Response[CreateInvoiceResponse], error)
	PreviewTotals(context.Context, *connect.Request[PreviewTotalsRequest]) (*connect.Response[PreviewTotalsResponse], error)
	GetInvoice(context.Context, *connect.Request[GetInvoiceRequest]) (*connect.Response[GetInvoiceResponse], error)
	ListInvoices(context.Context, *connect.Request[ListInvoicesRequest]) (*connect.Response[ListInvoicesResponse], error)
	DeleteInvoice(context.Context, *connect.Request[DeleteInvoiceRequest]) (*connect.Response[DeleteInvoiceResponse], error)
	ExportAll(context.Context, *connect.Request[ExportAllRequest]) (*connect.Response[ExportAllResponse], error)
	SendEmail(context.Context, *connect.Request[SendEmailRequest]) (*connect.Response[SendEmailResponse], error)
	TestEmail(context.Context, *connect.Request[TestEmailRequest]) (*connect.Response[TestEmailResponse], error)
	ArchiveInvoice(context.Context, *connect.Request[ArchiveInvoiceRequest]) (*connect.Response[ArchiveInvoiceResponse], error)
}

// NewInvoiceServiceHandler builds an HTTP handler from the service implementation. It returns
// the path on which to mount the handler and the handler itself.
func NewInvoiceServiceHandler(svc InvoiceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)
	handlers := map[string]http.Handler{
		InvoiceServiceCreateInvoiceProcedure:  connect.NewUnaryHandler(InvoiceServiceCreateInvoiceProcedure, svc.CreateInvoice, opts...),
		InvoiceServicePreviewTotalsProcedure:  connect.NewUnaryHandler(InvoiceServicePreviewTotalsProcedure, svc.PreviewTotals, opts...),
		InvoiceServiceGetInvoiceProcedure:     connect.NewUnaryHandler(InvoiceServiceGetInvoiceProcedure, svc.GetInvoice, opts...),
		InvoiceServiceListInvoicesProcedure:   connect.NewUnaryHandler(InvoiceServiceListInvoicesProcedure, svc.ListInvoices, opts...),
		InvoiceServiceDeleteInvoiceProcedure:  connect.NewUnaryHandler(InvoiceServiceDeleteInvoiceProcedure, svc.DeleteInvoice, opts...),
		InvoiceServiceExportAllProcedure:      connect.NewUnaryHandler(InvoiceServiceExportAllProcedure, svc.ExportAll, opts...),
		InvoiceServiceSendEmailProcedure:      connect.NewUnaryHandler(InvoiceServiceSendEmailProcedure, svc.SendEmail, opts...),
		InvoiceServiceTestEmailProcedure:      connect.NewUnaryHandler(InvoiceServiceTestEmailProcedure, svc.TestEmail, opts...),
		InvoiceServiceArchiveInvoiceProcedure: connect.NewUnaryHandler(InvoiceServiceArchiveInvoiceProcedure, svc.ArchiveInvoice, opts...),
	}
	return "/" + InvoiceServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// InvoiceServiceClient is a client for the invoicer.v1.InvoiceService service.
type InvoiceServiceClient interface {
	CreateInvoice(context.Context, *connect.Request[CreateInvoiceRequest]) (*connect.Response[CreateInvoiceResponse], error)
	PreviewTotals(context.Context, *connect.Request[PreviewTotalsRequest]) (*connect.Response[PreviewTotalsResponse], error)
	GetInvoice(context.Context, *connect.Request[GetInvoiceRequest]) (*connect.Response[GetInvoiceResponse], error)
	ListInvoices(context.Context, *connect.Request[ListInvoicesRequest]) (*connect.Response[ListInvoicesResponse], error)
	DeleteInvoice(context.Context, *connect.Request[DeleteInvoiceRequest]) (*connect.Response[DeleteInvoiceResponse], error)
	ExportAll(context.Context, *connect.Request[ExportAllRequest]) (*connect.Response[ExportAllResponse], error)
	SendEmail(context.Context, *connect.Request[SendEmailRequest]) (*connect.Response[SendEmailResponse], error)
	TestEmail(context.Context, *connect.Request[TestEmailRequest]) (*connect.Response[TestEmailResponse], error)
	ArchiveInvoice(context.Context, *connect.Request[ArchiveInvoiceRequest]) (*connect.Response[ArchiveInvoiceResponse], error)
}

// NewInvoiceServiceClient constructs a client for the invoicer.v1.InvoiceService service.
// baseURL is the scheme and host of the server, e.g. http://localhost:8080.
func NewInvoiceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) InvoiceServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec())}, opts...)
	return &invoiceServiceClient{
		createInvoice:  connect.NewClient[CreateInvoiceRequest, CreateInvoiceResponse](httpClient, baseURL+InvoiceServiceCreateInvoiceProcedure, opts...),
		previewTotals:  connect.NewClient[PreviewTotalsRequest, PreviewTotalsResponse](httpClient, baseURL+InvoiceServicePreviewTotalsProcedure, opts...),
		getInvoice:     connect.NewClient[GetInvoiceRequest, GetInvoiceResponse](httpClient, baseURL+InvoiceServiceGetInvoiceProcedure, opts...),
		listInvoices:   connect.NewClient[ListInvoicesRequest, ListInvoicesResponse](httpClient, baseURL+InvoiceServiceListInvoicesProcedure, opts...),
		deleteInvoice:  connect.NewClient[DeleteInvoiceRequest, DeleteInvoiceResponse](httpClient, baseURL+InvoiceServiceDeleteInvoiceProcedure, opts...),
		exportAll:      connect.NewClient[ExportAllRequest, ExportAllResponse](httpClient, baseURL+InvoiceServiceExportAllProcedure, opts...),
		sendEmail:      connect.NewClient[SendEmailRequest, SendEmailResponse](httpClient, baseURL+InvoiceServiceSendEmailProcedure, opts...),
		testEmail:      connect.NewClient[TestEmailRequest, TestEmailResponse](httpClient, baseURL+InvoiceServiceTestEmailProcedure, opts...),
		archiveInvoice: connect.NewClient[ArchiveInvoiceRequest, ArchiveInvoiceResponse](httpClient, baseURL+InvoiceServiceArchiveInvoiceProcedure, opts...),
	}
}

type invoiceServiceClient struct {
	createInvoice  *connect.Client[CreateInvoiceRequest, CreateInvoiceResponse]
	previewTotals  *connect.Client[PreviewTotalsRequest, PreviewTotalsResponse]
	getInvoice     *connect.Client[GetInvoiceRequest, GetInvoiceResponse]
	listInvoices   *connect.Client[ListInvoicesRequest, ListInvoicesResponse]
	deleteInvoice  *connect.Client[DeleteInvoiceRequest, DeleteInvoiceResponse]
	exportAll      *connect.Client[ExportAllRequest, ExportAllResponse]
	sendEmail      *connect.Client[SendEmailRequest, SendEmailResponse]
	testEmail      *connect.Client[TestEmailRequest, TestEmailResponse]
	archiveInvoice *connect.Client[ArchiveInvoiceRequest, ArchiveInvoiceResponse]
}

func (c *invoiceServiceClient) CreateInvoice(ctx context.Context, req *connect.Request[CreateInvoiceRequest]) (*connect.Response[CreateInvoiceResponse], error) {
	return c.createInvoice.CallUnary(ctx, req)
}

func (c *invoiceServiceClient) PreviewTotals(ctx context.Context, req *connect.Request[PreviewTotalsRequest]) (*connect.Response[PreviewTotalsResponse], error) {
	return c.previewTotals.CallUnary(ctx, req)
}

func (c *invoiceServiceClient) GetInvoice(ctx context.Context, req *connect.Request[GetInvoiceRequest]) (*connect.Response[GetInvoiceResponse], error) {
	return c.getInvoice.CallUnary(ctx, req)
}

func (c *invoiceServiceClient) ListInvoices(ctx context.Context, req *connect.Request[ListInvoicesRequest]) (*connect.Response[ListInvoicesResponse], error) {
	return c.listInvoices.CallUnary(ctx, req)
}

func (c *invoiceServiceClient) DeleteInvoice(ctx context.Context, req *connect.Request[DeleteInvoiceRequest]) (*connect.Response[DeleteInvoiceResponse], error) {
	return c.deleteInvoice.CallUnary(ctx, req)
}

func (c *invoiceServiceClient) ExportAll(ctx context.Context, req *connect.Request[ExportAllRequest]) (*connect.Response[ExportAllResponse], error) {
	return c.exportAll.CallUnary(ctx, req)
}

func (c *invoiceServiceClient) SendEmail(ctx context.Context, req *connect.Request[SendEmailRequest]) (*connect.Response[SendEmailResponse], error) {
	return c.sendEmail.CallUnary(ctx, req)
}

func (c *invoiceServiceClient) TestEmail(ctx context.Context, req *connect.Request[TestEmailRequest]) (*connect.Response[TestEmailResponse], error) {
	return c.testEmail.CallUnary(ctx, req)
}

func (c *invoiceServiceClient) ArchiveInvoice(ctx context.Context, req *connect.Request[ArchiveInvoiceRequest]) (*connect.Response[ArchiveInvoiceResponse], error) {
	return c.archiveInvoice.CallUnary(ctx, req)
}

// UnimplementedInvoiceServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedInvoiceServiceHandler struct{}

func (UnimplementedInvoiceServiceHandler) CreateInvoice(context.Context, *connect.Request[CreateInvoiceRequest]) (*connect.Response[CreateInvoiceResponse], error) {
	return nil, unimplemented("CreateInvoice")
}

func (UnimplementedInvoiceServiceHandler) PreviewTotals(context.Context, *connect.Request[PreviewTotalsRequest]) (*connect.Response[PreviewTotalsResponse], error) {
	return nil, unimplemented("PreviewTotals")
}

func (UnimplementedInvoiceServiceHandler) GetInvoice(context.Context, *connect.Request[GetInvoiceRequest]) (*connect.Response[GetInvoiceResponse], error) {
	return nil, unimplemented("GetInvoice")
}

func (UnimplementedInvoiceServiceHandler) ListInvoices(context.Context, *connect.Request[ListInvoicesRequest]) (*connect.Response[ListInvoicesResponse], error) {
	return nil, unimplemented("ListInvoices")
}

func (UnimplementedInvoiceServiceHandler) DeleteInvoice(context.Context, *connect.Request[DeleteInvoiceRequest]) (*connect.Response[DeleteInvoiceResponse], error) {
	return nil, unimplemented("DeleteInvoice")
}

func (UnimplementedInvoiceServiceHandler) ExportAll(context.Context, *connect.Request[ExportAllRequest]) (*connect.Response[ExportAllResponse], error) {
	return nil, unimplemented("ExportAll")
}

func (UnimplementedInvoiceServiceHandler) SendEmail(context.Context, *connect.Request[SendEmailRequest]) (*connect.Response[SendEmailResponse], error) {
	return nil, unimplemented("SendEmail")
}

func (UnimplementedInvoiceServiceHandler) TestEmail(context.Context, *connect.Request[TestEmailRequest]) (*connect.Response[TestEmailResponse], error) {
	return nil, unimplemented("TestEmail")
}

func (UnimplementedInvoiceServiceHandler) ArchiveInvoice(context.Context, *connect.Request[ArchiveInvoiceRequest]) (*connect.Response[ArchiveInvoiceResponse], error) {
	return nil, unimplemented("ArchiveInvoice")
}

func unimplemented(method string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(InvoiceServiceName+"."+method+" is not implemented"))
}
