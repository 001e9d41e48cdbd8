package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/graphbridge/internal/config"
	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/cache"
	"github.com/matzehuels/graphbridge/pkg/controller"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/graph"
	"github.com/matzehuels/graphbridge/pkg/module"
	"github.com/matzehuels/graphbridge/pkg/module/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "graphbridge"

	// renderCachePrefix namespaces render cache keys in Redis.
	renderCachePrefix = "graphbridge:render:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file named by --config, or the default one.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.SetLogLevel(cfg.LogLevel())
	c.Logger.Debug("loaded config", "path", path, "store", cfg.Store.Backend)
	return nil
}

// =============================================================================
// Modules & Graphs
// =============================================================================

// openRegistry connects to the configured module store.
func (c *CLI) openRegistry(ctx context.Context) (*module.Registry, error) {
	st, err := store.New(ctx, c.cfg.StoreOptions())
	if err != nil {
		return nil, err
	}
	return module.NewRegistry(st, c.Logger), nil
}

// openGraph opens the module at modulePath and the graph named by graphID.
// The caller must close the returned registry.
func (c *CLI) openGraph(ctx context.Context, modulePath, graphID string) (*module.Registry, controller.Handle, error) {
	id, err := graph.ParseID(graphID)
	if err != nil {
		return nil, controller.Handle{}, err
	}
	reg, err := c.openRegistry(ctx)
	if err != nil {
		return nil, controller.Handle{}, err
	}
	m, err := reg.Open(ctx, modulePath)
	if err != nil {
		reg.Close()
		return nil, controller.Handle{}, err
	}
	h, err := controller.NewHandle(m, id)
	if err != nil {
		reg.Close()
		return nil, controller.Handle{}, err
	}
	return reg, h, nil
}

// resolveNodeID accepts a full node ID or a unique prefix of one, as shown
// by the nodes command.
func resolveNodeID(h controller.Handle, s string) (ast.ID, error) {
	if id, err := ast.ParseID(s); err == nil {
		return id, nil
	}
	if s == "" {
		return ast.ID{}, errs.New(errs.ErrCodeInvalidInput, "node id cannot be empty")
	}

	infos, err := h.ListNodeInfos()
	if err != nil {
		return ast.ID{}, err
	}
	var matches []ast.ID
	for _, n := range infos {
		if strings.HasPrefix(n.ID().String(), strings.ToLower(s)) {
			matches = append(matches, n.ID())
		}
	}
	switch len(matches) {
	case 0:
		return ast.ID{}, errs.New(errs.ErrCodeNodeNotFound, "no node matches %q", s)
	case 1:
		return matches[0], nil
	}
	return ast.ID{}, errs.New(errs.ErrCodeInvalidInput, "%q matches %d nodes", s, len(matches))
}

// shortID is the display form of a node ID.
func shortID(id ast.ID) string {
	return id.String()[:8]
}

// =============================================================================
// Render Cache
// =============================================================================

// newCache returns the render cache selected by the config. Failures to set
// up a cache disable caching rather than fail the command.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache || c.cfg.Cache.Disabled {
		return cache.NewNullCache()
	}
	if c.cfg.Store.Backend == store.BackendRedis {
		client := redis.NewClient(&redis.Options{Addr: c.cfg.Store.RedisAddr})
		return cache.NewRedisCache(client, renderCachePrefix)
	}

	dir := c.cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("render cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/graphbridge/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
