package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9" // Redis client
)

const blacklistPrefix = "blacklist:" // Key prefix for revoked refresh tokens

// Blacklist records revoked refresh tokens in Redis, keyed by jti. Entries
// expire together with the token itself so the set never needs sweeping.
type Blacklist struct {
	rdb *redis.Client
}

// NewBlacklist returns a Redis-backed refresh token blacklist
func NewBlacklist(rdb *redis.Client) *Blacklist {
	return &Blacklist{rdb: rdb}
}

// Revoke marks a token id as unusable until it would have expired anyway
func (b *Blacklist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil // Already expired, nothing to record
	}
	return b.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether a token id has been blacklisted
func (b *Blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
