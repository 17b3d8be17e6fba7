package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/breaker"
)

func TestVerifier_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"0b3f","email":"ada@example.com","user_metadata":{"full_name":"Ada Lovelace"}}`))
	}))
	defer srv.Close()

	v := New(srv.URL+"/", "anon-key", time.Second, breaker.New(breaker.DefaultConfig()))

	ident, err := v.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "0b3f", ident.ID)
	assert.Equal(t, "ada@example.com", ident.Email)
	assert.Equal(t, "Ada Lovelace", ident.DisplayName)

	_, err = v.Verify(context.Background(), "bad-token")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestVerifier_RejectionsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cb := breaker.New(breaker.Config{FailureThreshold: 2})
	v := New(srv.URL, "anon-key", time.Second, cb)

	for range 5 {
		_, err := v.Verify(context.Background(), "bad")
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	}

	assert.Equal(t, breaker.Closed, cb.State())
}

func TestVerifier_OutageOpensBreaker(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cb := breaker.New(breaker.Config{FailureThreshold: 2, OpenTimeout: time.Hour})
	v := New(srv.URL, "anon-key", time.Second, cb)

	for range 4 {
		_, err := v.Verify(context.Background(), "any")
		assert.ErrorIs(t, err, apperr.ErrUnavailable)
	}

	assert.Equal(t, breaker.Open, cb.State())
	assert.Equal(t, int32(2), calls.Load())
}
