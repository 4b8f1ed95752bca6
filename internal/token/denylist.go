package token

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist invalidates refresh tokens before their natural expiry.
// Logout writes the token's jti here; refresh checks it first.
type Denylist struct {
	client *redis.Client
}

// NewDenylist returns a redis-backed denylist.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

func denyKey(jti string) string {
	return "token:denied:" + jti
}

// Revoke marks the token ID as unusable until it would have expired
// anyway, keeping the keyspace bounded.
func (d *Denylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denyKey(jti), "1", ttl).Err()
}

// Revoked reports whether the token ID has been revoked. Lookup errors
// fail closed: an unreachable denylist rejects the token.
func (d *Denylist) Revoked(ctx context.Context, jti string) (bool, error) {
	_, err := d.client.Get(ctx, denyKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return true, err
	}
	return true, nil
}
