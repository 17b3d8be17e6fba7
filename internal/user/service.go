package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/pagination"
	"github.com/MrJamesThe3rd/invoiceai/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// ProvisionUser inserts u unless a row with the same external id exists,
	// and returns whichever row won.
	ProvisionUser(ctx context.Context, u *User) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	ListUsers(ctx context.Context, page pagination.Page) ([]*User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ProvisionParams struct {
	ExternalID string
	Email      string
	FullName   string
}

type UpdateParams struct {
	Email    *string `validate:"omitnil,email"`
	FullName *string `validate:"omitnil,max=200"`
	Password *string `validate:"omitnil,min=8,max=72"`
}

// Provision returns the local user for an external identity, creating an
// active, non-superuser account without a local credential on first sight.
func (s *Service) Provision(ctx context.Context, params ProvisionParams) (*User, error) {
	u, err := s.repo.GetUserByExternalID(ctx, params.ExternalID)
	if err == nil {
		return u, nil
	}

	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	u = &User{
		ExternalID: params.ExternalID,
		Email:      params.Email,
		IsActive:   true,
	}
	if params.FullName != "" {
		u.FullName = new(params.FullName)
	}

	created, err := s.repo.ProvisionUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("provisioning user: %w", err)
	}

	return created, nil
}

func (s *Service) Me(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// Get returns a user visible to actor: themselves, or anyone for a superuser.
func (s *Service) Get(ctx context.Context, actor access.Principal, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.ID != actor.UserID && !actor.Superuser {
		return nil, apperr.ErrPermissionDenied
	}

	return u, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

func (s *Service) List(ctx context.Context, page pagination.Page) ([]*User, error) {
	return s.repo.ListUsers(ctx, page.Normalize())
}

func (s *Service) UpdateMe(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Email != nil && *params.Email != u.Email {
		existing, err := s.repo.GetUserByEmail(ctx, *params.Email)

		switch {
		case err == nil && existing.ID != u.ID:
			return nil, apperr.Conflict("email already registered")
		case err != nil && !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}

		u.Email = *params.Email
	}

	if params.FullName != nil {
		u.FullName = params.FullName
	}

	if params.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}

		u.HashedPassword = string(hash)
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}
