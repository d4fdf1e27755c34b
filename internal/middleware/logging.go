package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/invoicer/internal/metrics"
)

// invoiceScoped is implemented by request messages that name one invoice.
type invoiceScoped interface {
	GetInvoiceNumber() string
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its request ID, target invoice and duration, and counts it in
// metrics.RPCRequestsTotal by result code.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			attrs := []any{"procedure", procedure, "request_id", RequestIDFrom(ctx)}
			if msg, ok := req.Any().(invoiceScoped); ok && msg.GetInvoiceNumber() != "" {
				attrs = append(attrs, "invoice_number", msg.GetInvoiceNumber())
			}

			resp, err := next(ctx, req)
			attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())

			code := "ok"
			var connectErr *connect.Error
			switch {
			case err == nil:
				slog.Info("RPC ok", attrs...)
			case errors.As(err, &connectErr):
				code = connectErr.Code().String()
				level := slog.LevelWarn
				if connectErr.Code() == connect.CodeInternal || connectErr.Code() == connect.CodeDataLoss {
					level = slog.LevelError
				}
				slog.Log(ctx, level, "RPC error", append(attrs, "code", code, "error", connectErr.Message())...)
			default:
				code = connect.CodeOf(err).String()
				slog.Error("RPC error", append(attrs, "error", err)...)
			}
			metrics.RPCRequestsTotal.WithLabelValues(procedure, code).Inc()

			return resp, err
		}
	}
}
