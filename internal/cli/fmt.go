package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/luminsql/lumin/pkg/dialect"
	"github.com/luminsql/lumin/pkg/parser"
	"github.com/spf13/cobra"
)

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt [files...]",
		Short: "Rewrite SQL statements in canonical form",
		Long: `Parse SQL statements and print them back in canonical form for the
configured dialect. Identifiers are quoted only when the dialect
requires it.

Reads from stdin when no files are given.`,
		Example: `  # Format from stdin
  echo 'select  a,b from t' | lumin fmt

  # Rewrite files in place
  lumin fmt -w queries/*.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dialect.Lookup(cfg.Dialect)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				sql, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				out, err := formatSQL(string(sql), d)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				out, err := formatSQL(string(data), d)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if write {
					if err := os.WriteFile(path, []byte(out+"\n"), 0o644); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite files in place instead of printing")
	return cmd
}

func formatSQL(sql string, d *dialect.Dialect) (string, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return "", err
	}
	return stmt.ToSQL(d), nil
}
