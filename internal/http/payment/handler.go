package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoiceai/internal/http/guard"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/respond"
	"github.com/MrJamesThe3rd/invoiceai/internal/importer"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
)

type Handler struct {
	svc       *payment.Service
	importSvc *importer.Service
}

func NewHandler(svc *payment.Service, importSvc *importer.Service) *Handler {
	return &Handler{svc: svc, importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/import", h.importCSV)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      respond.Date    `json:"date"`
	Method    payment.Method  `json:"method"`
	Reference *string         `json:"reference"`
	Notes     *string         `json:"notes"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Record(r.Context(), guard.Scope(r), payment.CreateParams{
		Amount:    req.Amount,
		Date:      req.Date.Time,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
		InvoiceID: req.InvoiceID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := respond.Page(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	invoiceID, err := respond.QueryID(r, "invoice_id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	payments, err := h.svc.List(r.Context(), guard.Scope(r), payment.ListFilter{InvoiceID: invoiceID, Page: page})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(payments))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), guard.Scope(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

type updatePaymentRequest struct {
	Amount    *decimal.Decimal `json:"amount"`
	Date      *respond.Date    `json:"date"`
	Method    *payment.Method  `json:"method"`
	Reference *string          `json:"reference"`
	Notes     *string          `json:"notes"`
	InvoiceID *uuid.UUID       `json:"invoice_id"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updatePaymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Update(r.Context(), guard.Scope(r), id, payment.UpdateParams{
		Amount:    req.Amount,
		Date:      respond.DatePtr(req.Date),
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
		InvoiceID: req.InvoiceID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Delete(r.Context(), guard.Scope(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}
