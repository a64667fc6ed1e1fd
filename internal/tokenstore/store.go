// Package tokenstore records revoked access tokens until they expire.
package tokenstore

import (
	"context"
	"time"
)

type Store interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const keyPrefix = "revoked:"
