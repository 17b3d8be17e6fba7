package invoice

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/MrJamesThe3rd/invoiceai/internal/export"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/guard"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/respond"
)

// Downloads are rendered into memory first so a failure halfway can still be
// reported as a proper error response.

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exports.WriteCSV(r.Context(), &buf, guard.Scope(r), filter); err != nil {
		respond.Error(w, r, err)
		return
	}

	attachment(w, "text/csv; charset=utf-8", fmt.Sprintf("invoices_%s.csv", time.Now().Format("20060102")), buf.Bytes())
}

func (h *Handler) exportZip(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exports.WriteBundle(r.Context(), &buf, guard.Scope(r), filter); err != nil {
		respond.Error(w, r, err)
		return
	}

	attachment(w, "application/zip", fmt.Sprintf("invoices_%s.zip", time.Now().Format("20060102")), buf.Bytes())
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Get(r.Context(), guard.Scope(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exports.WritePDF(r.Context(), &buf, guard.Scope(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	attachment(w, "application/pdf", export.FileName(inv)+".pdf", buf.Bytes())
}

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
