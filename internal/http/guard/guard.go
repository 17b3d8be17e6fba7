// Package guard authenticates requests and carries the caller's access
// scope to the handlers.
package guard

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/http/respond"
	"github.com/MrJamesThe3rd/invoiceai/internal/user"
)

type Resolver interface {
	Resolve(ctx context.Context, credential string) (*user.User, error)
}

type ctxKey int

const (
	userKey ctxKey = iota
	unrestrictedKey
)

// Authenticate resolves the bearer credential into a local user. Websocket
// upgrades may pass it as the access_token query parameter instead, since
// browsers cannot set headers on them.
func Authenticate(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := resolver.Resolve(r.Context(), credential(r))
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, u)
			ctx = access.WithPrincipal(ctx, access.Principal{UserID: u.ID, Superuser: u.IsSuperuser})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func credential(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("access_token")
	}

	return ""
}

// RequireSuperuser must run after Authenticate.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := access.FromContext(r.Context())
		if !ok || !p.Superuser {
			respond.Error(w, r, apperr.ErrPermissionDenied)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Unrestricted widens Scope to every owner. Mount it only behind
// RequireSuperuser.
func Unrestricted(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), unrestrictedKey, true)))
	})
}

// User is the authenticated caller. Handlers behind Authenticate may rely on
// it being set.
func User(r *http.Request) *user.User {
	u, _ := r.Context().Value(userKey).(*user.User)
	return u
}

func Principal(r *http.Request) access.Principal {
	p, _ := access.FromContext(r.Context())
	return p
}

// Scope is the ownership predicate for the request. A missing principal
// yields the zero scope, which matches nothing.
func Scope(r *http.Request) access.Scope {
	p, ok := access.FromContext(r.Context())
	if !ok {
		return access.Scope{}
	}

	if unrestricted, _ := r.Context().Value(unrestrictedKey).(bool); unrestricted && p.Superuser {
		return access.Everyone()
	}

	return p.Scope()
}
