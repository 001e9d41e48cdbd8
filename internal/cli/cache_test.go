package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/graphbridge/pkg/cache"
)

func TestRenderCacheDirFromConfig(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Dir = "/tmp/renders"

	dir, err := c.renderCacheDir()
	if err != nil {
		t.Fatalf("renderCacheDir() error: %v", err)
	}
	if dir != "/tmp/renders" {
		t.Errorf("renderCacheDir() = %q, want %q", dir, "/tmp/renders")
	}
}

func TestNewCache(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Dir = t.TempDir()

	if _, ok := c.newCache(true).(cache.NullCache); !ok {
		t.Error("newCache(true) should disable caching")
	}
	if _, ok := c.newCache(false).(*cache.FileCache); !ok {
		t.Error("newCache(false) should use the file cache")
	}

	c.cfg.Cache.Disabled = true
	if _, ok := c.newCache(false).(cache.NullCache); !ok {
		t.Error("newCache() with caching disabled in config should use NullCache")
	}
}

func TestCacheClear(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Dir = t.TempDir()

	fc, err := cache.NewFileCache(c.cfg.Cache.Dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, key, []byte(key), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.cacheClearCommand().RunE(nil, nil); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	for _, key := range []string{"a", "b", "c"} {
		if _, ok, _ := fc.Get(ctx, key); ok {
			t.Errorf("entry %q survived cache clear", key)
		}
	}
}

func TestCacheClearMissingDir(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg.Cache.Dir = filepath.Join(t.TempDir(), "never-created")

	if err := c.cacheClearCommand().RunE(nil, nil); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if _, err := os.Stat(c.cfg.Cache.Dir); !os.IsNotExist(err) {
		t.Error("cache clear should not create the cache dir")
	}
}
