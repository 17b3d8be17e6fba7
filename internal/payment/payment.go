package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
)

type Method string

const (
	MethodCreditCard   Method = "credit_card"
	MethodBankTransfer Method = "bank_transfer"
	MethodCash         Method = "cash"
	MethodCheck        Method = "check"
	MethodOther        Method = "other"
)

var Methods = []Method{MethodCreditCard, MethodBankTransfer, MethodCash, MethodCheck, MethodOther}

type Payment struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	Date      time.Time
	Method    Method
	Reference *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusChange is published after a committed payment moved an invoice.
type StatusChange struct {
	UserID    uuid.UUID
	InvoiceID uuid.UUID
	Number    string
	From      invoice.Status
	To        invoice.Status
	Rule      string
}
