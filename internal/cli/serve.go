package cli

import (
	"github.com/luminsql/lumin/internal/server"
	"github.com/luminsql/lumin/pkg/analysis"
	"github.com/luminsql/lumin/pkg/dialect"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		Long: `Start an HTTP server exposing statement analysis. POST /v1/analyze
accepts {"sql": "...", "dialect": "..."} and responds with the analysis
outcome, including access events and privilege requests.`,
		Example: `  # Serve on the configured port
  lumin serve

  # Serve against a DuckDB catalog
  lumin serve --catalog duckdb --dsn warehouse.db --port 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := dialect.Lookup(cfg.Dialect); err != nil {
				return err
			}

			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer closeCatalog(cat)

			store, err := openAuditStore(cfg, logger)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			srv := server.New(server.Config{
				Catalog: cat,
				Store:   store,
				Dialect: cfg.Dialect,
				Authz:   analysis.AuthzConfig{Enabled: cfg.Authz.Enabled, ServerName: cfg.Authz.ServerName},
				Port:    cfg.Server.Port,
				Logger:  logger,
			})
			return srv.Serve(cmd.Context())
		},
	}
	cmd.Flags().Int("port", 0, "Listen port (default: configured server.port)")
	return cmd
}
