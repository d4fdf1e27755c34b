package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/export"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/internal/storage"
)

type handlers struct {
	manager *service.Manager
}

// downloadPDF handles GET /invoices/{number}/pdf. The PDF is rendered from
// the stored record on every request.
func (h *handlers) downloadPDF(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]

	data, err := h.manager.PDF(r.Context(), number)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storage.RecordName(number)+".pdf"))
	w.Write(data)
}

// downloadCSV handles GET /invoices/{number}/csv.
func (h *handlers) downloadCSV(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]

	var buf bytes.Buffer
	if err := h.manager.WriteInvoiceCSV(r.Context(), number, &buf); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.FormatCSV.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", storage.RecordName(number)+".csv"))
	w.Write(buf.Bytes())
}

// downloadSummary handles GET /exports/summary.{csv|json}.
func (h *handlers) downloadSummary(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	format, err := h.manager.WriteSummary(r.Context(), export.Format(mux.Vars(r)["format"]), &buf)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("all_invoices_summary_%s.%s", time.Now().Format("20060102_150405"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusOf maps an error kind to an HTTP status.
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindMalformedRecord, apperr.KindPartialData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
	} else {
		slog.Warn("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  apperr.KindOf(err).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
