package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/http/respond"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
)

type itemResponse struct {
	ID          uuid.UUID `json:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id"`
	Description string    `json:"description"`
	Quantity    string    `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	Amount      string    `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type invoiceResponse struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	ClientID   uuid.UUID      `json:"client_id"`
	Number     string         `json:"number"`
	Status     invoice.Status `json:"status"`
	IssuedDate respond.Date   `json:"issued_date"`
	DueDate    respond.Date   `json:"due_date"`
	Subtotal   string         `json:"subtotal"`
	Tax        string         `json:"tax"`
	Discount   string         `json:"discount"`
	Total      string         `json:"total"`
	AmountPaid string         `json:"amount_paid"`
	BalanceDue string         `json:"balance_due"`
	Notes      *string        `json:"notes"`
	Items      []itemResponse `json:"items"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	items := make([]itemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = itemResponse{
			ID:          it.ID,
			InvoiceID:   it.InvoiceID,
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			UnitPrice:   respond.Money(it.UnitPrice),
			Amount:      respond.Money(it.Amount),
			CreatedAt:   it.CreatedAt,
			UpdatedAt:   it.UpdatedAt,
		}
	}

	return invoiceResponse{
		ID:         inv.ID,
		UserID:     inv.UserID,
		ClientID:   inv.ClientID,
		Number:     inv.Number,
		Status:     inv.Status,
		IssuedDate: respond.NewDate(inv.IssuedDate),
		DueDate:    respond.NewDate(inv.DueDate),
		Subtotal:   respond.Money(inv.Subtotal),
		Tax:        respond.Money(inv.Tax),
		Discount:   respond.Money(inv.Discount),
		Total:      respond.Money(inv.Total),
		AmountPaid: respond.Money(inv.AmountPaid),
		BalanceDue: respond.Money(inv.BalanceDue()),
		Notes:      inv.Notes,
		Items:      items,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv)
	}

	return resp
}
