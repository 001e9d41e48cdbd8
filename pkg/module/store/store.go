// Package store provides module.Store implementations.
//
// Backends:
//   - [FileStore]: modules as files under a directory (CLI default)
//   - [MemoryStore]: process-local, for tests and throwaway servers
//   - [RedisStore]: modules as Redis strings under a key prefix
//   - [MongoStore]: one document per module in a MongoDB collection
//
// All backends report a missing module with errs.ErrCodeModuleNotFound and
// any other failure with errs.ErrCodeStorage. [New] builds the backend
// selected by [Options].
package store

import (
	"context"
	"errors"
	"time"

	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/module"
	"github.com/matzehuels/graphbridge/pkg/observability"
)

// Backend names accepted by [Options].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Dir is the FileStore root.
	Dir string

	RedisAddr   string
	RedisPrefix string

	MongoURI      string
	MongoDatabase string
}

// New opens the backend selected by opts.
func New(ctx context.Context, opts Options) (module.Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPrefix)
	case BackendMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown store backend %q", opts.Backend)
}

func notFound(path string) error {
	return errs.New(errs.ErrCodeModuleNotFound, "module %s was not found", path)
}

// observe reports a store operation to the registered hooks.
func observe(ctx context.Context, op, backend, path string, size int, start time.Time, err error) {
	d := time.Since(start)
	if op == "load" {
		observability.Store().OnLoad(ctx, backend, path, size, d, err)
		return
	}
	observability.Store().OnSave(ctx, backend, path, size, d, err)
}

// =============================================================================
// Retries
// =============================================================================

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryDelay is the wait before the first retry; it doubles after each.
var retryDelay = 200 * time.Millisecond

// RetryWithBackoff retries fn up to 3 times with exponential backoff.
// Only errors wrapped with Retryable will trigger retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// unwrapRetryable strips the retry marker so callers see the storage error.
func unwrapRetryable(err error) error {
	var re *RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}
