// Package cache stores rendered graph artifacts so that unchanged graphs are
// not laid out again.
//
// Graphviz layout is the slowest step of serving a graph picture. Artifacts
// are keyed by a hash of the DOT source they were rendered from ([RenderKey]),
// so any edit to a graph produces a new key and stale entries simply age out.
//
// Implementations:
//   - [NullCache]: caching disabled (--no-cache, or no reachable backend)
//   - [FileCache]: one file per entry, for the CLI and single-process servers
//   - [RedisCache]: shared between server replicas
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultTTL is how long rendered artifacts are kept.
const DefaultTTL = 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// RenderKey returns the cache key of an artifact rendered in the given
// format from dot: "render:<format>:<sha256 of dot>".
func RenderKey(format string, dot []byte) string {
	sum := sha256.Sum256(dot)
	return "render:" + format + ":" + hex.EncodeToString(sum[:])
}

// NullCache is the cache used when rendering must not reuse artifacts.
// Every lookup misses, so each graph is laid out again.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }
