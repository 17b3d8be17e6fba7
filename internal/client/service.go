package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/pagination"
	"github.com/MrJamesThe3rd/invoiceai/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=client
type Repository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, scope access.Scope, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context, scope access.Scope, filter ListFilter) ([]*Client, error)
	UpdateClient(ctx context.Context, scope access.Scope, c *Client) error
	DeleteClient(ctx context.Context, scope access.Scope, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name    string  `validate:"required,min=2,max=100"`
	Email   string  `validate:"required,email"`
	Phone   *string `validate:"omitnil,max=50"`
	Address *string
	Company *string `validate:"omitnil,max=200"`
	Notes   *string
}

type UpdateParams struct {
	Name    *string `validate:"omitnil,min=2,max=100"`
	Email   *string `validate:"omitnil,email"`
	Phone   *string `validate:"omitnil,max=50"`
	Address *string
	Company *string `validate:"omitnil,max=200"`
	Notes   *string
}

type ListFilter struct {
	// Search matches name or email, case-insensitively.
	Search *string
	Page   pagination.Page
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Client, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	c := &Client{
		UserID:  ownerID,
		Name:    params.Name,
		Email:   params.Email,
		Phone:   params.Phone,
		Address: params.Address,
		Company: params.Company,
		Notes:   params.Notes,
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, scope access.Scope, id uuid.UUID) (*Client, error) {
	return s.repo.GetClient(ctx, scope, id)
}

func (s *Service) List(ctx context.Context, scope access.Scope, filter ListFilter) ([]*Client, error) {
	filter.Page = filter.Page.Normalize()
	return s.repo.ListClients(ctx, scope, filter)
}

func (s *Service) Update(ctx context.Context, scope access.Scope, id uuid.UUID, params UpdateParams) (*Client, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	c, err := s.repo.GetClient(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		c.Name = *params.Name
	}

	if params.Email != nil {
		c.Email = *params.Email
	}

	if params.Phone != nil {
		c.Phone = params.Phone
	}

	if params.Address != nil {
		c.Address = params.Address
	}

	if params.Company != nil {
		c.Company = params.Company
	}

	if params.Notes != nil {
		c.Notes = params.Notes
	}

	if err := s.repo.UpdateClient(ctx, scope, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Delete removes the client together with its invoices and their payments.
func (s *Service) Delete(ctx context.Context, scope access.Scope, id uuid.UUID) (*Client, error) {
	c, err := s.repo.GetClient(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteClient(ctx, scope, id); err != nil {
		return nil, err
	}

	return c, nil
}
