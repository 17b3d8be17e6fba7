package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/client"
	"github.com/MrJamesThe3rd/invoiceai/internal/pagination"
	"github.com/MrJamesThe3rd/invoiceai/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	// CreateInvoice writes the header and all items in one transaction.
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, scope access.Scope, id uuid.UUID) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, scope access.Scope, number string) (*Invoice, error)
	ListInvoices(ctx context.Context, scope access.Scope, filter ListFilter) ([]*Invoice, error)
	// UpdateInvoice writes the header and, when w.Items is set, swaps the
	// whole item set in the same transaction. inv.Status is refreshed from the
	// stored row.
	UpdateInvoice(ctx context.Context, scope access.Scope, inv *Invoice, w Write) error
	DeleteInvoice(ctx context.Context, scope access.Scope, id uuid.UUID) error
}

// ClientLookup resolves the client an invoice is billed to under the caller's scope.
type ClientLookup interface {
	Get(ctx context.Context, scope access.Scope, id uuid.UUID) (*client.Client, error)
}

type Service struct {
	repo    Repository
	clients ClientLookup
}

func NewService(repo Repository, clients ClientLookup) *Service {
	return &Service{repo: repo, clients: clients}
}

type ItemParams struct {
	Description string          `validate:"required,max=500"`
	Quantity    decimal.Decimal `validate:"gt=0,qty"`
	UnitPrice   decimal.Decimal `validate:"gt=0,money"`
	Amount      decimal.Decimal `validate:"gt=0,money"`
}

type CreateParams struct {
	Number     string          `validate:"required,max=50"`
	Status     Status          `validate:"omitempty,oneof=draft pending paid overdue cancelled"`
	IssuedDate time.Time       `validate:"required"`
	DueDate    time.Time       `validate:"required"`
	Subtotal   decimal.Decimal `validate:"gte=0,money"`
	Tax        decimal.Decimal `validate:"gte=0,money"`
	Discount   decimal.Decimal `validate:"gte=0,money"`
	Total      decimal.Decimal `validate:"gt=0,money"`
	Notes      *string
	ClientID   uuid.UUID    `validate:"required"`
	Items      []ItemParams `validate:"dive"`
}

type UpdateParams struct {
	Number     *string `validate:"omitnil,min=1,max=50"`
	Status     *Status `validate:"omitnil,oneof=draft pending paid overdue cancelled"`
	IssuedDate *time.Time
	DueDate    *time.Time
	Subtotal   *decimal.Decimal `validate:"omitnil,gte=0,money"`
	Tax        *decimal.Decimal `validate:"omitnil,gte=0,money"`
	Discount   *decimal.Decimal `validate:"omitnil,gte=0,money"`
	Total      *decimal.Decimal `validate:"omitnil,gt=0,money"`
	Notes      *string
	ClientID   *uuid.UUID
	// Items replaces the full item set when non-nil; nil leaves items untouched.
	Items []ItemParams `validate:"omitempty,dive"`
}

// Write selects the parts of an invoice UpdateInvoice touches besides the
// plain header columns.
type Write struct {
	// Status is written only when set; otherwise the stored status is kept.
	Status bool
	// Items replaces the whole item set.
	Items bool
}

type ListFilter struct {
	Status   *Status
	ClientID *uuid.UUID
	Page     pagination.Page
}

// Create validates the whole request, including every item, before anything
// is written, then stores the invoice under the owner of its client.
func (s *Service) Create(ctx context.Context, scope access.Scope, params CreateParams) (*Invoice, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	c, err := s.clients.Get(ctx, scope, params.ClientID)
	if err != nil {
		return nil, err
	}

	status := params.Status
	if status == "" {
		status = StatusDraft
	}

	inv := &Invoice{
		UserID:     c.UserID,
		ClientID:   c.ID,
		Number:     params.Number,
		Status:     status,
		IssuedDate: params.IssuedDate,
		DueDate:    params.DueDate,
		Subtotal:   params.Subtotal,
		Tax:        params.Tax,
		Discount:   params.Discount,
		Total:      params.Total,
		Notes:      params.Notes,
		Items:      toItems(params.Items),
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) Get(ctx context.Context, scope access.Scope, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, scope, id)
}

// FindByNumber returns the most recently created invoice with that number.
func (s *Service) FindByNumber(ctx context.Context, scope access.Scope, number string) (*Invoice, error) {
	return s.repo.GetInvoiceByNumber(ctx, scope, number)
}

func (s *Service) List(ctx context.Context, scope access.Scope, filter ListFilter) ([]*Invoice, error) {
	filter.Page = filter.Page.Normalize()
	return s.repo.ListInvoices(ctx, scope, filter)
}

// Update applies the provided fields. Status recomputation never happens
// here: editing Total does not move an invoice in or out of paid, and the
// stored status is only overwritten when the request names one. A new client
// must belong to the invoice's owner.
func (s *Service) Update(ctx context.Context, scope access.Scope, id uuid.UUID, params UpdateParams) (*Invoice, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	inv, err := s.repo.GetInvoice(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if params.ClientID != nil && *params.ClientID != inv.ClientID {
		c, err := s.clients.Get(ctx, scope, *params.ClientID)
		if err != nil {
			return nil, err
		}

		if c.UserID != inv.UserID {
			return nil, apperr.NotFound("client")
		}

		inv.ClientID = c.ID
	}

	applyUpdate(inv, params)

	w := Write{Status: params.Status != nil, Items: params.Items != nil}
	if w.Items {
		inv.Items = toItems(params.Items)
	}

	if err := s.repo.UpdateInvoice(ctx, scope, inv, w); err != nil {
		return nil, err
	}

	return inv, nil
}

// Delete removes the invoice with its items and payments.
func (s *Service) Delete(ctx context.Context, scope access.Scope, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteInvoice(ctx, scope, id); err != nil {
		return nil, err
	}

	return inv, nil
}

func applyUpdate(inv *Invoice, params UpdateParams) {
	if params.Number != nil {
		inv.Number = *params.Number
	}

	if params.Status != nil {
		inv.Status = *params.Status
	}

	if params.IssuedDate != nil {
		inv.IssuedDate = *params.IssuedDate
	}

	if params.DueDate != nil {
		inv.DueDate = *params.DueDate
	}

	if params.Subtotal != nil {
		inv.Subtotal = *params.Subtotal
	}

	if params.Tax != nil {
		inv.Tax = *params.Tax
	}

	if params.Discount != nil {
		inv.Discount = *params.Discount
	}

	if params.Total != nil {
		inv.Total = *params.Total
	}

	if params.Notes != nil {
		inv.Notes = params.Notes
	}
}

func toItems(params []ItemParams) []Item {
	items := make([]Item, len(params))
	for i, p := range params {
		items[i] = Item{
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Amount:      p.Amount,
		}
	}

	return items
}
