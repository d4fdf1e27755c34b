// Package server exposes the invoice workflows over HTTP: the Connect
// InvoiceService, document downloads, health and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/invoicer/internal/config"
	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/pkg/api"
)

// shutdownTimeout bounds how long in-flight requests get after ctx is cancelled.
const shutdownTimeout = 10 * time.Second

// NewRouter wires every route onto a gorilla/mux router.
func NewRouter(manager *service.Manager, cfg config.ServerConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	// Register Connect service
	path, handler := api.NewInvoiceServiceHandler(
		service.NewInvoiceService(manager),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)
	r.PathPrefix(path).Handler(handler)

	h := &handlers{manager: manager}
	r.HandleFunc("/invoices/{number}/pdf", h.downloadPDF).Methods(http.MethodGet)
	r.HandleFunc("/invoices/{number}/csv", h.downloadCSV).Methods(http.MethodGet)
	r.HandleFunc("/exports/summary.{format:csv|json}", h.downloadSummary).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.StaticPath != "" {
		r.PathPrefix("/").Handler(staticHandler(cfg.StaticPath))
	}
	return r
}

// NewHandler wraps the router with recovery, request IDs, logging and CORS,
// and with h2c so Connect clients can use HTTP/2 without TLS.
func NewHandler(manager *service.Manager, cfg config.ServerConfig) http.Handler {
	var h http.Handler = NewRouter(manager, cfg)
	h = middleware.CORS(cfg.CorsAllowedOrigins)(h)
	h = middleware.Logging(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(h)
	return h2c.NewHandler(h, &http2.Server{})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, manager *service.Manager, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewHandler(manager, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// staticHandler serves files from dir, falling back to index.html for
// unknown paths.
func staticHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/"+api.InvoiceServiceName+"/") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(dir, filepath.Clean(urlPath))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	})
}
