// Package access carries the acting user through a request and renders the
// ownership predicate that every store query starts from. A row the caller
// does not own is indistinguishable from a row that does not exist.
package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    uuid.UUID
	Superuser bool
}

// Scope returns the ownership scope used for the caller's own data. Superusers
// get the same restricted scope here; only explicit admin listings use Everyone.
func (p Principal) Scope() Scope {
	return Owner(p.UserID)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Scope decides which rows a query may touch. The zero Scope matches nothing.
type Scope struct {
	owner uuid.UUID
	all   bool
}

func Owner(userID uuid.UUID) Scope {
	return Scope{owner: userID}
}

// Everyone is the unrestricted operator scope.
func Everyone() Scope {
	return Scope{all: true}
}

// OwnerID returns the owning user, false for the unrestricted or zero scope.
func (s Scope) OwnerID() (uuid.UUID, bool) {
	if s.all || s.owner == uuid.Nil {
		return uuid.Nil, false
	}

	return s.owner, true
}

func (s Scope) Unrestricted() bool {
	return s.all
}

// Where starts a condition list seeded with the ownership predicate on column.
func (s Scope) Where(column string) *Where {
	w := &Where{}

	switch {
	case s.all:
	case s.owner == uuid.Nil:
		w.conds = append(w.conds, "FALSE")
	default:
		w.And(column+" = $%d", s.owner)
	}

	return w
}

// Where accumulates AND-ed SQL conditions with numbered placeholders.
type Where struct {
	conds []string
	args  []any
}

// And appends a condition. format must reference the placeholder index with
// %d (or %[1]d when the argument is used more than once).
func (w *Where) And(format string, arg any) *Where {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(format, len(w.args)))

	return w
}

// Arg registers a value outside the WHERE clause (SET lists, LIMIT) and
// returns its placeholder.
func (w *Where) Arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *Where) Args() []any {
	return w.args
}
