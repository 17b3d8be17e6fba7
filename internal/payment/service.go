package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/invoice"
	"github.com/MrJamesThe3rd/invoiceai/internal/pagination"
	"github.com/MrJamesThe3rd/invoiceai/internal/reconcile"
	"github.com/MrJamesThe3rd/invoiceai/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	GetPayment(ctx context.Context, scope access.Scope, id uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context, scope access.Scope, filter ListFilter) ([]*Payment, error)
	UpdatePayment(ctx context.Context, scope access.Scope, p *Payment) error

	// BeginLedger opens a transaction holding a row lock on the invoice, found
	// under scope. Concurrent ledgers on the same invoice serialize.
	BeginLedger(ctx context.Context, scope access.Scope, invoiceID uuid.UUID) (Ledger, error)
}

// Ledger is a locked view of one invoice's payments.
type Ledger interface {
	// Invoice is the locked invoice header, without items.
	Invoice() *invoice.Invoice
	AddPayment(ctx context.Context, p *Payment) error
	RemovePayment(ctx context.Context, id uuid.UUID) error
	Paid(ctx context.Context) (decimal.Decimal, error)
	SetStatus(ctx context.Context, status invoice.Status) error
	Commit() error
	Rollback() error
}

// InvoiceLookup resolves a target invoice under the caller's scope.
type InvoiceLookup interface {
	Get(ctx context.Context, scope access.Scope, id uuid.UUID) (*invoice.Invoice, error)
}

// Notifier hears about committed status changes.
type Notifier interface {
	InvoiceStatusChanged(ctx context.Context, change StatusChange)
}

type Service struct {
	repo     Repository
	invoices InvoiceLookup
	notifier Notifier
}

func NewService(repo Repository, invoices InvoiceLookup, notifier Notifier) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &Service{repo: repo, invoices: invoices, notifier: notifier}
}

type nopNotifier struct{}

func (nopNotifier) InvoiceStatusChanged(context.Context, StatusChange) {}

type CreateParams struct {
	Amount    decimal.Decimal `validate:"gt=0,money"`
	Date      time.Time       `validate:"required"`
	Method    Method          `validate:"required,oneof=credit_card bank_transfer cash check other"`
	Reference *string         `validate:"omitnil,max=200"`
	Notes     *string
	InvoiceID uuid.UUID `validate:"required"`
}

type UpdateParams struct {
	Amount    *decimal.Decimal `validate:"omitnil,gt=0,money"`
	Date      *time.Time
	Method    *Method `validate:"omitnil,oneof=credit_card bank_transfer cash check other"`
	Reference *string `validate:"omitnil,max=200"`
	Notes     *string
	InvoiceID *uuid.UUID
}

type ListFilter struct {
	InvoiceID *uuid.UUID
	Page      pagination.Page
}

// Record stores a payment against an invoice the caller owns and settles the
// invoice in the same transaction.
func (s *Service) Record(ctx context.Context, scope access.Scope, params CreateParams) (*Payment, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	ledger, err := s.repo.BeginLedger(ctx, scope, params.InvoiceID)
	if err != nil {
		return nil, err
	}
	defer ledger.Rollback()

	inv := ledger.Invoice()

	p := &Payment{
		UserID:    inv.UserID,
		InvoiceID: inv.ID,
		Amount:    params.Amount,
		Date:      params.Date,
		Method:    params.Method,
		Reference: params.Reference,
		Notes:     params.Notes,
	}
	if err := ledger.AddPayment(ctx, p); err != nil {
		return nil, err
	}

	if err := s.settle(ctx, ledger, reconcile.PaymentRecorded); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, scope access.Scope, id uuid.UUID) (*Payment, error) {
	return s.repo.GetPayment(ctx, scope, id)
}

func (s *Service) List(ctx context.Context, scope access.Scope, filter ListFilter) ([]*Payment, error) {
	filter.Page = filter.Page.Normalize()
	return s.repo.ListPayments(ctx, scope, filter)
}

// Update amends a payment in place. Moving it to another invoice requires the
// caller to see that invoice and the payment's owner to own it. Neither invoice's status is recomputed.
func (s *Service) Update(ctx context.Context, scope access.Scope, id uuid.UUID, params UpdateParams) (*Payment, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	p, err := s.repo.GetPayment(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if params.InvoiceID != nil && *params.InvoiceID != p.InvoiceID {
		target, err := s.invoices.Get(ctx, scope, *params.InvoiceID)
		if err != nil {
			return nil, err
		}

		if target.UserID != p.UserID {
			return nil, apperr.NotFound("invoice")
		}

		p.InvoiceID = target.ID
	}

	if params.Amount != nil {
		p.Amount = *params.Amount
	}

	if params.Date != nil {
		p.Date = *params.Date
	}

	if params.Method != nil {
		p.Method = *params.Method
	}

	if params.Reference != nil {
		p.Reference = params.Reference
	}

	if params.Notes != nil {
		p.Notes = params.Notes
	}

	if err := s.repo.UpdatePayment(ctx, scope, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Delete removes a payment and reopens its invoice when it no longer covers the total.
func (s *Service) Delete(ctx context.Context, scope access.Scope, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetPayment(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	ledger, err := s.repo.BeginLedger(ctx, scope, p.InvoiceID)
	if err != nil {
		return nil, err
	}
	defer ledger.Rollback()

	if err := ledger.RemovePayment(ctx, p.ID); err != nil {
		return nil, err
	}

	if err := s.settle(ctx, ledger, reconcile.PaymentRemoved); err != nil {
		return nil, err
	}

	return p, nil
}

// settle is the only place payment code asks for a status decision. It
// writes the new status, commits the ledger and then notifies.
func (s *Service) settle(ctx context.Context, ledger Ledger, ev reconcile.Event) error {
	inv := ledger.Invoice()

	paid, err := ledger.Paid(ctx)
	if err != nil {
		return err
	}

	d, err := reconcile.Next(ev, reconcile.Ledger{Status: inv.Status, Total: inv.Total, Paid: paid})
	if err != nil {
		return err
	}

	if d.Changed() {
		if err := ledger.SetStatus(ctx, d.To); err != nil {
			return err
		}
	}

	if err := ledger.Commit(); err != nil {
		return fmt.Errorf("committing payment ledger: %w", err)
	}

	if d.Changed() {
		s.notifier.InvoiceStatusChanged(ctx, StatusChange{
			UserID:    inv.UserID,
			InvoiceID: inv.ID,
			Number:    inv.Number,
			From:      d.From,
			To:        d.To,
			Rule:      d.Rule,
		})
	}

	return nil
}
