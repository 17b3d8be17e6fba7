package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/auth"
)

// unreachable points at a closed port so every cache call fails fast.
func unreachable(t *testing.T) *redis.Client {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })

	return rdb
}

func TestVerifier_FallsThroughWhenCacheDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := auth.NewMockVerifier(ctrl)

	next.EXPECT().Verify(gomock.Any(), "tok").Return(&auth.Identity{ID: "sub-1"}, nil)

	got, err := New(unreachable(t), next, time.Minute).Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", got.ID)
}

func TestVerifier_PropagatesRejection(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := auth.NewMockVerifier(ctrl)

	next.EXPECT().Verify(gomock.Any(), "bad").Return(nil, apperr.ErrUnauthenticated)

	_, err := New(unreachable(t), next, time.Minute).Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestKey_DoesNotLeakCredential(t *testing.T) {
	k := key("secret-token")

	assert.NotContains(t, k, "secret-token")
	assert.Equal(t, key("secret-token"), k)
	assert.NotEqual(t, key("other-token"), k)
}
