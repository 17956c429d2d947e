package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/server"
)

// serveCommand creates the serve command exposing the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		file    string
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the network and its layouts over HTTP",
		Long: `Serve the network and its layouts over HTTP.

Routes:
  GET  /healthz
  GET  /api/entities?q=&limit=
  GET  /api/entities/{id}
  GET  /api/relationships?start=&end=
  GET  /api/stats?start=&end=
  GET  /api/time-range
  GET  /api/layout?start=&end=&seed=&format=
  POST /api/layout

The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), file, addr, noCache)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "serve a JSON database instead of the configured source")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, file, addr string, noCache bool) error {
	cfg := c.settings()

	src, closeSrc, err := c.openSource(ctx, file)
	if err != nil {
		return err
	}
	defer closeSrc()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(server.Config{
		Addr:        addr,
		Timeout:     cfg.ServerTimeout(),
		CORSOrigins: cfg.Server.CORSOrigins,
	}, src, runner, c.Logger)

	printSuccess("Listening on %s", StyleHighlight.Render(addr))
	printDetail("Press Ctrl+C to stop")
	return srv.ListenAndServe(ctx)
}
