package cli

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphbridge/internal/server"
	"github.com/matzehuels/graphbridge/pkg/buildinfo"
	"github.com/matzehuels/graphbridge/pkg/observability/metrics"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve module graphs over HTTP",
		Long: `Serve the graphs of the configured module store over HTTP.

Clients can list and edit nodes, render graphs and follow changes through
server-sent events. Prometheus metrics are served at /metrics unless
--no-metrics is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			reg, err := c.openRegistry(ctx)
			if err != nil {
				return err
			}
			defer reg.Close()

			ch := c.newCache(false)
			defer ch.Close()

			var metricsHandler http.Handler
			if c.cfg.Server.Metrics && !noMetrics {
				metricsHandler = c.installMetrics()
			}

			c.Logger.Debug("starting server", "version", buildinfo.Version)
			printInfo("Serving on %s", StyleLink.Render(serverURL(addr)))
			printKeyValue("store", c.cfg.Store.Backend)
			printKeyValue("metrics", fmt.Sprint(metricsHandler != nil))

			srv := server.New(reg, server.Options{
				Cache:    ch,
				CacheTTL: c.cfg.Cache.TTL.Duration,
				Metrics:  metricsHandler,
				Detailed: c.cfg.Render.Detailed,
				Logger:   c.Logger,
			})
			return srv.Run(ctx, addr, c.cfg.Server.ReadTimeout.Duration, c.cfg.Server.WriteTimeout.Duration)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")
	return cmd
}

// installMetrics registers the Prometheus collectors as observability hooks
// and returns the scrape handler.
func (c *CLI) installMetrics() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)
	m.Install()
	return m.Handler()
}

// serverURL turns a listen address into a URL to print, e.g. ":8080" into
// "http://localhost:8080".
func serverURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
