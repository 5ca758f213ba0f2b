// Package history implements the optional run-to-run suppression store:
// fingerprints of reported articles, kept in Redis with a TTL so old
// entries age out on their own.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
)

// RedisStore remembers which fingerprints were already reported.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

var _ ports.HistoryStore = (*RedisStore)(nil)

// NewRedisStore connects to the given address. The prefix namespaces keys
// so the digest can share an instance.
func NewRedisStore(addr, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
		ttl:    ttl,
	}
}

// Seen returns, for each fingerprint, whether it was reported before.
func (s *RedisStore) Seen(ctx context.Context, fingerprints []string) (map[string]bool, error) {
	result := make(map[string]bool, len(fingerprints))
	if len(fingerprints) == 0 {
		return result, nil
	}

	cmds := make([]*redis.IntCmd, len(fingerprints))
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, fp := range fingerprints {
			cmds[i] = pipe.Exists(ctx, s.prefix+fp)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("history lookup: %w", err)
	}

	for i, fp := range fingerprints {
		result[fp] = cmds[i].Val() > 0
	}
	return result, nil
}

// MarkSeen records fingerprints with the configured TTL.
func (s *RedisStore) MarkSeen(ctx context.Context, fingerprints []string) error {
	if len(fingerprints) == 0 {
		return nil
	}

	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, fp := range fingerprints {
			pipe.Set(ctx, s.prefix+fp, 1, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("history update: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
