// Package auth turns a bearer credential into a local user. Verification is
// delegated to an identity provider behind the Verifier interface.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/user"
)

// Identity is what the provider vouches for.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=auth
type Verifier interface {
	// Verify fails with apperr.ErrUnauthenticated for any rejected credential.
	Verify(ctx context.Context, credential string) (*Identity, error)
}

type Provisioner interface {
	Provision(ctx context.Context, params user.ProvisionParams) (*user.User, error)
}

type Resolver struct {
	verifier Verifier
	users    Provisioner
}

func NewResolver(verifier Verifier, users Provisioner) *Resolver {
	return &Resolver{verifier: verifier, users: users}
}

// Resolve verifies the credential and returns the matching local user,
// provisioning one on first sight. Inactive users are refused even with a
// valid credential.
func (r *Resolver) Resolve(ctx context.Context, credential string) (*user.User, error) {
	if credential == "" {
		return nil, apperr.ErrUnauthenticated
	}

	ident, err := r.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	if ident.ID == "" {
		return nil, fmt.Errorf("%w: identity without subject", apperr.ErrUnauthenticated)
	}

	u, err := r.users.Provision(ctx, user.ProvisionParams{
		ExternalID: ident.ID,
		Email:      ident.Email,
		FullName:   ident.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	if !u.IsActive {
		return nil, apperr.ErrInactiveAccount
	}

	return u, nil
}

// Unauthenticated wraps a provider rejection, keeping its reason for logs.
func Unauthenticated(reason error) error {
	if reason == nil || errors.Is(reason, apperr.ErrUnauthenticated) {
		return apperr.ErrUnauthenticated
	}

	return fmt.Errorf("%w: %w", apperr.ErrUnauthenticated, reason)
}
