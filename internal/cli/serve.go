package cli

import (
	"github.com/spf13/cobra"

	"github.com/lineagekit/lineagekit/internal/config"
	"github.com/lineagekit/lineagekit/internal/metrics"
	"github.com/lineagekit/lineagekit/internal/server"
	"github.com/lineagekit/lineagekit/pkg/integrations"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lineage HTTP API",
		Long: `Serve the lineage HTTP API.

Routes:
  GET  /api/v1/lineage/{id}             lineage graph (format=canonical|renderable|dot)
  GET  /api/v1/lineage?ids=a,b          merged graph for several entities
  POST /api/v1/lineage/{id}/invalidate  drop every cached variant of an entity
  POST /api/v1/lineage/validate         check a canonical graph
  POST /api/v1/lineage/normalize        normalize a raw backend payload
  GET  /healthz                         liveness
  GET  /metrics                         Prometheus metrics

In mock mode the mock backend is also served at /mock/lineage/{id}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			rec := metrics.New()
			rec.Install()

			var mockSrc integrations.Source
			if cfg.Mode == config.ModeMock {
				mockSrc = runner.Source
			}

			printInfo("Serving lineage API on %s", StyleLink.Render(listenURL(cfg.Server.Addr)))
			printDetail("source: %s, cache: %s", runner.Source.Name(), cfg.Cache.Backend)

			return server.New(server.Config{
				Addr:     cfg.Server.Addr,
				Runner:   runner,
				Defaults: cfg.LineageOptions(),
				Mock:     mockSrc,
				Metrics:  rec.Handler(),
				Logger:   c.Logger,
			}).Serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}

// mockCommand creates the mock command, which serves the mock catalog with
// the backend's contract so other tools can target it as backend.url.
func (c *CLI) mockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve the mock catalog as a lineage backend",
		Long: `Serve the mock catalog as a lineage backend at /mock/lineage/{id}.

Point another lineagekit at it with:
  lineagekit --backend-url http://localhost:8080/mock get tbl_customers`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			src, err := newMockSource(cfg)
			if err != nil {
				return err
			}

			printInfo("Mock backend on %s", StyleLink.Render(listenURL(cfg.Server.Addr)+"/mock"))
			printDetail("%d entities, %d relationships, shape %s",
				len(src.Catalog().Entities), len(src.Catalog().Relationships), cfg.Mock.Shape)

			return server.New(server.Config{
				Addr:   cfg.Server.Addr,
				Mock:   src,
				Logger: c.Logger,
			}).Serve(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("catalog", "", "TOML catalog file (default: built-in banking catalog)")
	cmd.Flags().String("shape", "", "payload shape: server (default) or legacy")
	cmd.Flags().Duration("latency", 0, "artificial delay per request")
	return cmd
}

// listenURL turns a listen address into a clickable URL.
func listenURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
