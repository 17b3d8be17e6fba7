package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/http/respond"
	"github.com/MrJamesThe3rd/invoiceai/internal/payment"
)

type paymentResponse struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	InvoiceID uuid.UUID      `json:"invoice_id"`
	Amount    string         `json:"amount"`
	Date      respond.Date   `json:"date"`
	Method    payment.Method `json:"method"`
	Reference *string        `json:"reference"`
	Notes     *string        `json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toResponse(p *payment.Payment) paymentResponse {
	return paymentResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		InvoiceID: p.InvoiceID,
		Amount:    respond.Money(p.Amount),
		Date:      respond.NewDate(p.Date),
		Method:    p.Method,
		Reference: p.Reference,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toResponseList(ps []*payment.Payment) []paymentResponse {
	resp := make([]paymentResponse, len(ps))
	for i, p := range ps {
		resp[i] = toResponse(p)
	}

	return resp
}
