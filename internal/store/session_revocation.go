package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionRevocationStore keeps revoked session ids in Redis with a TTL equal to
// the remaining lifetime of the session, so the set never outgrows live sessions.
type RedisSessionRevocationStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisSessionRevocationStore creates a revocation store under the given key prefix.
func NewRedisSessionRevocationStore(client redis.UniversalClient, prefix string) *RedisSessionRevocationStore {
	trimmedPrefix := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmedPrefix == "" {
		trimmedPrefix = "vendor:revoked_session"
	}
	return &RedisSessionRevocationStore{client: client, prefix: trimmedPrefix}
}

// Revoke marks sessionID as signed out for ttl.
func (s *RedisSessionRevocationStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(sessionID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether sessionID was signed out.
func (s *RedisSessionRevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return n > 0, nil
}

func (s *RedisSessionRevocationStore) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, strings.TrimSpace(sessionID))
}
