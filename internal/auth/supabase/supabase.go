// Package supabase verifies access tokens against a Supabase auth server.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/auth"
	"github.com/MrJamesThe3rd/invoiceai/internal/breaker"
)

type Verifier struct {
	baseURL string
	anonKey string
	client  *http.Client
	breaker *breaker.Breaker
}

func New(baseURL, anonKey string, timeout time.Duration, cb *breaker.Breaker) *Verifier {
	return &Verifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client:  &http.Client{Timeout: timeout},
		breaker: cb,
	}
}

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

var errRejected = errors.New("credential rejected by identity provider")

// Verify asks the provider who owns the token. Rejections are not counted
// against the breaker; transport failures and 5xx answers are.
func (v *Verifier) Verify(ctx context.Context, credential string) (*auth.Identity, error) {
	var ident *auth.Identity

	var rejected error

	err := v.breaker.Execute(func() error {
		var err error

		ident, err = v.fetch(ctx, credential)
		if errors.Is(err, errRejected) {
			rejected = err
			return nil
		}

		return err
	})

	switch {
	case err != nil:
		return nil, fmt.Errorf("%w: identity provider: %w", apperr.ErrUnavailable, err)
	case rejected != nil:
		return nil, auth.Unauthenticated(rejected)
	}

	return ident, nil
}

func (v *Verifier) fetch(ctx context.Context, credential string) (*auth.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("apikey", v.anonKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling identity provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("identity provider returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w (status %d)", errRejected, resp.StatusCode)
	}

	var body userResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding user: %w", errRejected, err)
	}

	return &auth.Identity{
		ID:          body.ID,
		Email:       body.Email,
		DisplayName: body.UserMetadata.FullName,
	}, nil
}
