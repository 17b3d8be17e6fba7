package report

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/invoiceai/internal/http/guard"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/respond"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
}

type summaryResponse struct {
	Counts        map[invoice.Status]int `json:"counts"`
	InvoiceCount  int                    `json:"invoice_count"`
	TotalInvoiced string                 `json:"total_invoiced"`
	TotalPaid     string                 `json:"total_paid"`
	Outstanding   string                 `json:"outstanding"`
	OverdueCount  int                    `json:"overdue_count"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context(), guard.Scope(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, summaryResponse{
		Counts:        sum.Counts,
		InvoiceCount:  sum.InvoiceCount,
		TotalInvoiced: respond.Money(sum.TotalInvoiced),
		TotalPaid:     respond.Money(sum.TotalPaid),
		Outstanding:   respond.Money(sum.Outstanding),
		OverdueCount:  sum.OverdueCount,
	})
}
