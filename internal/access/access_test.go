package access_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/invoiceai/internal/access"
)

func TestScope_Where(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name     string
		scope    access.Scope
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Owner",
			scope:    access.Owner(owner),
			wantSQL:  " WHERE i.user_id = $1 AND i.id = $2",
			wantArgs: []any{owner, "x"},
		},
		{
			name:     "Everyone",
			scope:    access.Everyone(),
			wantSQL:  " WHERE i.id = $1",
			wantArgs: []any{"x"},
		},
		{
			name:     "ZeroScopeMatchesNothing",
			scope:    access.Scope{},
			wantSQL:  " WHERE FALSE AND i.id = $1",
			wantArgs: []any{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.scope.Where("i.user_id").And("i.id = $%d", "x")

			assert.Equal(t, tt.wantSQL, w.SQL())
			assert.Equal(t, tt.wantArgs, w.Args())
		})
	}
}

func TestWhere_ReusedPlaceholderAndArg(t *testing.T) {
	owner := uuid.New()

	w := access.Owner(owner).Where("c.user_id").
		And("(c.name ILIKE $%[1]d OR c.email ILIKE $%[1]d)", "%acme%")
	limit := w.Arg(10)

	assert.Equal(t, " WHERE c.user_id = $1 AND (c.name ILIKE $2 OR c.email ILIKE $2)", w.SQL())
	assert.Equal(t, "$3", limit)
	assert.Equal(t, []any{owner, "%acme%", 10}, w.Args())
}

func TestScope_OwnerID(t *testing.T) {
	owner := uuid.New()

	id, ok := access.Owner(owner).OwnerID()
	assert.True(t, ok)
	assert.Equal(t, owner, id)

	_, ok = access.Everyone().OwnerID()
	assert.False(t, ok)

	_, ok = access.Scope{}.OwnerID()
	assert.False(t, ok)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := access.FromContext(context.Background())
	assert.False(t, ok)

	p := access.Principal{UserID: uuid.New(), Superuser: true}
	got, ok := access.FromContext(access.WithPrincipal(context.Background(), p))

	assert.True(t, ok)
	assert.Equal(t, p, got)
	assert.False(t, got.Scope().Unrestricted())
}
