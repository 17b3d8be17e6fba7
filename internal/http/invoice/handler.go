package invoice

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/export"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/guard"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/respond"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
)

type Handler struct {
	svc     *invoice.Service
	exports *export.Service
}

func NewHandler(svc *invoice.Service, exports *export.Service) *Handler {
	return &Handler{svc: svc, exports: exports}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/export.csv", h.exportCSV)
	r.Get("/export.zip", h.exportZip)
	r.Get("/{id}", h.get)
	r.Get("/{id}/pdf", h.pdf)
	r.Put("/{id}", h.update)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type itemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

type createInvoiceRequest struct {
	Number     string          `json:"number"`
	Status     invoice.Status  `json:"status"`
	IssuedDate respond.Date    `json:"issued_date"`
	DueDate    respond.Date    `json:"due_date"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	Notes      *string         `json:"notes"`
	ClientID   uuid.UUID       `json:"client_id"`
	Items      []itemRequest   `json:"items"`
}

func toItemParams(items []itemRequest) []invoice.ItemParams {
	if items == nil {
		return nil
	}

	params := make([]invoice.ItemParams, len(items))
	for i, it := range items {
		params[i] = invoice.ItemParams{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		}
	}

	return params
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Create(r.Context(), guard.Scope(r), invoice.CreateParams{
		Number:     req.Number,
		Status:     req.Status,
		IssuedDate: req.IssuedDate.Time,
		DueDate:    req.DueDate.Time,
		Subtotal:   req.Subtotal,
		Tax:        req.Tax,
		Discount:   req.Discount,
		Total:      req.Total,
		Notes:      req.Notes,
		ClientID:   req.ClientID,
		Items:      toItemParams(req.Items),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(inv))
}

func listFilter(r *http.Request) (invoice.ListFilter, error) {
	page, err := respond.Page(r)
	if err != nil {
		return invoice.ListFilter{}, err
	}

	filter := invoice.ListFilter{Page: page}

	if s := r.URL.Query().Get("status"); s != "" {
		st := invoice.Status(s)
		if !st.Valid() {
			return invoice.ListFilter{}, apperr.Invalid("status", fmt.Sprintf("must be one of %v", invoice.Statuses))
		}

		filter.Status = &st
	}

	if filter.ClientID, err = respond.QueryID(r, "client_id"); err != nil {
		return invoice.ListFilter{}, err
	}

	return filter, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	invoices, err := h.svc.List(r.Context(), guard.Scope(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(invoices))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
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

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

type updateInvoiceRequest struct {
	Number     *string          `json:"number"`
	Status     *invoice.Status  `json:"status"`
	IssuedDate *respond.Date    `json:"issued_date"`
	DueDate    *respond.Date    `json:"due_date"`
	Subtotal   *decimal.Decimal `json:"subtotal"`
	Tax        *decimal.Decimal `json:"tax"`
	Discount   *decimal.Decimal `json:"discount"`
	Total      *decimal.Decimal `json:"total"`
	Notes      *string          `json:"notes"`
	ClientID   *uuid.UUID       `json:"client_id"`
	Items      []itemRequest    `json:"items"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateInvoiceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Update(r.Context(), guard.Scope(r), id, invoice.UpdateParams{
		Number:     req.Number,
		Status:     req.Status,
		IssuedDate: respond.DatePtr(req.IssuedDate),
		DueDate:    respond.DatePtr(req.DueDate),
		Subtotal:   req.Subtotal,
		Tax:        req.Tax,
		Discount:   req.Discount,
		Total:      req.Total,
		Notes:      req.Notes,
		ClientID:   req.ClientID,
		Items:      toItemParams(req.Items),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Delete(r.Context(), guard.Scope(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}
