package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/module"
)

// DefaultRedisPrefix namespaces module keys when no prefix is configured.
const DefaultRedisPrefix = "graphbridge:module:"

// RedisStore keeps each module as a string value under prefix+path.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	if addr == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "redis address is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "connect to redis at %s", addr)
	}
	s := NewRedisStoreWithClient(client, prefix)
	s.owned = true
	return s, nil
}

// NewRedisStoreWithClient wraps an existing client. Close leaves the
// client open.
func NewRedisStoreWithClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Load fetches the module value.
func (s *RedisStore) Load(ctx context.Context, path string) (data []byte, err error) {
	start := time.Now()
	defer func() { observe(ctx, "load", BackendRedis, path, len(data), start, err) }()

	err = RetryWithBackoff(ctx, func() error {
		var getErr error
		data, getErr = s.client.Get(ctx, s.prefix+path).Bytes()
		if getErr != nil && !errors.Is(getErr, redis.Nil) {
			return Retryable(getErr)
		}
		return getErr
	})
	if errors.Is(err, redis.Nil) {
		return nil, notFound(path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, unwrapRetryable(err), "load module %s", path)
	}
	return data, nil
}

// Save stores the module value without expiry.
func (s *RedisStore) Save(ctx context.Context, path string, data []byte) (err error) {
	start := time.Now()
	defer func() { observe(ctx, "save", BackendRedis, path, len(data), start, err) }()

	err = RetryWithBackoff(ctx, func() error {
		return Retryable(s.client.Set(ctx, s.prefix+path, data, 0).Err())
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, unwrapRetryable(err), "save module %s", path)
	}
	return nil
}

// List scans for keys under the prefix.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var paths []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		paths = append(paths, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "list modules")
	}
	return paths, nil
}

// Close closes the client if the store created it.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ module.Store = (*RedisStore)(nil)
