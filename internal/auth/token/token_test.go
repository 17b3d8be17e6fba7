package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
)

const secret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()

	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return s
}

func TestVerifier_Verify(t *testing.T) {
	v := New(secret)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("Valid", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{
			Email:            "ada@example.com",
			UserMetadata:     map[string]any{"full_name": "Ada Lovelace"},
			RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1", ExpiresAt: future},
		})

		ident, err := v.Verify(context.Background(), tok)
		require.NoError(t, err)
		assert.Equal(t, "sub-1", ident.ID)
		assert.Equal(t, "ada@example.com", ident.Email)
		assert.Equal(t, "Ada Lovelace", ident.DisplayName)
	})

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "WrongSecret",
			token: sign(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "s", ExpiresAt: future}}),
		},
		{
			name:  "Expired",
			token: sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "s", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}),
		},
		{
			name:  "NoExpiry",
			token: sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "s"}}),
		},
		{
			name:  "NoSubject",
			token: sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}}),
		},
		{
			name:  "WrongAlgorithm",
			token: sign(t, jwt.SigningMethodHS512, []byte(secret), Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "s", ExpiresAt: future}}),
		},
		{
			name:  "Garbage",
			token: "not.a.jwt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		})
	}
}
