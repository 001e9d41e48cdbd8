// Package server exposes module graphs over HTTP.
//
// Routes (all under /api/v1):
//
//	GET    /modules                                   list module paths
//	GET    /modules/{module}/code                     module source
//	PUT    /modules/{module}/code                     replace source (text body)
//	GET    /modules/{module}/graphs                   list graph IDs
//	GET    /modules/{module}/graphs/{graph}/nodes     list nodes
//	POST   /modules/{module}/graphs/{graph}/nodes     add a node
//	GET    /modules/{module}/graphs/{graph}/nodes/{id}
//	DELETE /modules/{module}/graphs/{graph}/nodes/{id}
//	PUT    /modules/{module}/graphs/{graph}/nodes/{id}/position
//	GET    /modules/{module}/graphs/{graph}/export.json
//	GET    /modules/{module}/graphs/{graph}/render.dot
//	GET    /modules/{module}/graphs/{graph}/render.svg
//	GET    /modules/{module}/graphs/{graph}/events    server-sent events
//
// {module} is the URL-escaped module path ("app%2Fmain.gb"); {graph} is a
// graph ID as printed by graph.ID.String ("main.helper").
//
// Edits are committed to the shared in-memory model before the module is
// saved. When the store fails the request answers 500 with STORAGE, but the
// edit stays visible to every handle and is written by the next successful
// save.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/graphbridge/pkg/cache"
	"github.com/matzehuels/graphbridge/pkg/module"
)

// Options configures a Server.
type Options struct {
	// Cache stores rendered SVGs. Nil disables caching.
	Cache cache.Cache
	// CacheTTL is the lifetime of cached renders. Zero uses cache.DefaultTTL.
	CacheTTL time.Duration
	// Metrics, if set, is served at /metrics.
	Metrics http.Handler
	// Detailed renders node labels with kind and identity.
	Detailed bool
	// KeepAlive is the interval of SSE keep-alive comments. Zero uses 30s.
	KeepAlive time.Duration
	Logger    *log.Logger
}

// Server serves the HTTP API over a module registry.
type Server struct {
	registry *module.Registry
	cache    cache.Cache
	ttl      time.Duration
	metrics  http.Handler
	detailed bool
	keep     time.Duration
	logger   *log.Logger
}

// New creates a server over registry.
func New(registry *module.Registry, opts Options) *Server {
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	if opts.KeepAlive == 0 {
		opts.KeepAlive = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		registry: registry,
		cache:    opts.Cache,
		ttl:      opts.CacheTTL,
		metrics:  opts.Metrics,
		detailed: opts.Detailed,
		keep:     opts.KeepAlive,
		logger:   opts.Logger,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1/modules", func(r chi.Router) {
		r.Get("/", s.listModules)
		r.Route("/{module}", func(r chi.Router) {
			r.Get("/code", s.getCode)
			r.Put("/code", s.putCode)
			r.Get("/graphs", s.listGraphs)
			r.Route("/graphs/{graph}", func(r chi.Router) {
				r.Get("/nodes", s.listNodes)
				r.Post("/nodes", s.addNode)
				r.Get("/nodes/{id}", s.getNode)
				r.Delete("/nodes/{id}", s.removeNode)
				r.Put("/nodes/{id}/position", s.setPosition)
				r.Get("/export.json", s.exportGraph)
				r.Get("/render.dot", s.renderDOT)
				r.Get("/render.svg", s.renderSVG)
				r.Get("/events", s.events)
			})
		})
	})
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
