package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the payment lifecycle state of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

var Statuses = []Status{StatusDraft, StatusPending, StatusPaid, StatusOverdue, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}

	return false
}

// Item is a line on an invoice. Amount is supplied by the caller and is not
// derived from Quantity and UnitPrice.
type Item struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Invoice struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ClientID   uuid.UUID
	Number     string
	Status     Status
	IssuedDate time.Time
	DueDate    time.Time
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	Notes      *string
	Items      []Item
	AmountPaid decimal.Decimal // Loaded from the payment ledger
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BalanceDue is the unpaid remainder, never negative.
func (i *Invoice) BalanceDue() decimal.Decimal {
	due := i.Total.Sub(i.AmountPaid)
	if due.IsNegative() {
		return decimal.Zero
	}

	return due
}
