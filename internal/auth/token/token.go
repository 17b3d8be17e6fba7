// Package token verifies Supabase access tokens offline with the project's
// HS256 JWT secret.
package token

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/invoiceai/internal/auth"
)

type Verifier struct {
	secret []byte
}

func New(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

type Claims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

func (v *Verifier) Verify(_ context.Context, credential string) (*auth.Identity, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, auth.Unauthenticated(err)
	}

	if !tok.Valid || claims.Subject == "" {
		return nil, auth.Unauthenticated(nil)
	}

	ident := &auth.Identity{ID: claims.Subject, Email: claims.Email}
	if name, ok := claims.UserMetadata["full_name"].(string); ok {
		ident.DisplayName = name
	}

	return ident, nil
}
