// Package cache remembers verified identities in Redis for a short TTL so a
// burst of requests with the same token verifies once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/invoiceai/internal/auth"
)

const keyPrefix = "invoiceai:identity:"

type Verifier struct {
	rdb  *redis.Client
	next auth.Verifier
	ttl  time.Duration
}

func New(rdb *redis.Client, next auth.Verifier, ttl time.Duration) *Verifier {
	return &Verifier{rdb: rdb, next: next, ttl: ttl}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return rdb, nil
}

func key(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Verify serves from cache when possible. Cache errors degrade to a direct
// verification; rejections are never cached.
func (v *Verifier) Verify(ctx context.Context, credential string) (*auth.Identity, error) {
	k := key(credential)

	raw, err := v.rdb.Get(ctx, k).Bytes()

	switch {
	case err == nil:
		var ident auth.Identity
		if jsonErr := json.Unmarshal(raw, &ident); jsonErr == nil {
			return &ident, nil
		}
	case !errors.Is(err, redis.Nil):
		slog.Warn("identity cache read failed", "error", err)
	}

	ident, err := v.next.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(ident)
	if err != nil {
		return ident, nil
	}

	if err := v.rdb.Set(ctx, k, payload, v.ttl).Err(); err != nil {
		slog.Warn("identity cache write failed", "error", err)
	}

	return ident, nil
}
