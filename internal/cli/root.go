// Package cli provides the command-line interface for lumin.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/luminsql/lumin/internal/audit"
	"github.com/luminsql/lumin/internal/config"
	"github.com/luminsql/lumin/pkg/catalog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lumin",
		Short: "Lumin - SQL scope and privilege analyzer",
		Long: `Lumin analyzes SQL statements before they reach an engine: it resolves
WITH-clause definitions and table references against a catalog, reports
unresolvable objects, and collects the access events and privilege
requests a statement would generate.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			// cmd.Flags() merges the subcommand's own flags with the
			// inherited persistent ones, so serve's --port reaches the
			// loader too.
			cfg, err = config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lumin.yaml)")
	rootCmd.PersistentFlags().StringP("dialect", "d", "", "SQL dialect (ansi|hive|snowflake)")
	rootCmd.PersistentFlags().String("catalog", "", "Catalog driver (memory|file|sqlite|duckdb|postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "Catalog connection string")
	rootCmd.PersistentFlags().String("schema", "", "YAML schema file for the file catalog driver")
	rootCmd.PersistentFlags().String("default-schema", "", "Schema for unqualified table references")
	rootCmd.PersistentFlags().String("user", "", "User recorded on analysis audit entries")
	rootCmd.PersistentFlags().String("audit", "", "Audit database path (setting it enables auditing)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|plain|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{ModeAuto, ModeText, ModePlain, ModeJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"ansi", "hive", "snowflake"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewAnalyzeCommand())
	rootCmd.AddCommand(NewFmtCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewReplCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command under ctx and prints any failure to
// stderr. The commands set SilenceErrors, so this is the one place a
// CLI error is reported.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openCatalog opens the configured catalog provider.
func openCatalog(cfg *config.Config) (catalog.Catalog, error) {
	return catalog.Open(catalog.Options{
		Driver:        cfg.Catalog.Driver,
		DSN:           cfg.Catalog.DSN,
		SchemaFile:    cfg.Catalog.SchemaFile,
		DefaultSchema: cfg.Catalog.DefaultSchema,
	})
}

// openAuditStore opens the audit store when auditing is enabled, or returns
// nil.
func openAuditStore(cfg *config.Config, logger *slog.Logger) (*audit.Store, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}
	if cfg.Audit.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Audit.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return audit.Open(cfg.Audit.Path, logger)
}

func closeCatalog(cat catalog.Catalog) {
	if closer, ok := cat.(io.Closer); ok {
		_ = closer.Close()
	}
}
