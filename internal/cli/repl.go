package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/luminsql/lumin/pkg/dialect"
	"github.com/spf13/cobra"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively analyze SQL statements",
		Long: `Start an interactive shell. Statements are analyzed on each terminating
semicolon; dot-commands control the session.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd)
		},
	}
	return cmd
}

func runRepl(cmd *cobra.Command) error {
	d, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
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

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lumin> ",
		HistoryFile:     ".lumin/repl_history",
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem(".help"),
			readline.PcItem(".dialect",
				readline.PcItem("ansi"), readline.PcItem("hive"), readline.PcItem("snowflake")),
			readline.PcItem(".quit"),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "lumin %s (dialect: %s)\n", Version, d.Name)
	fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	fmt.Fprintln(out)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt("lumin> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			quit, newDialect := handleDotCommand(out, d, line)
			if quit {
				break
			}
			if newDialect != nil {
				d = newDialect
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon.
		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString(" ")
			rl.SetPrompt("  ...> ")
			continue
		}
		rl.SetPrompt("lumin> ")

		sql := strings.TrimSuffix(buf.String(), ";")
		buf.Reset()

		res := analyzeOne(cmd.Context(), cat, d, store, "<repl>", sql)
		if err := renderResults(out, []fileResult{res}, effectiveMode(cfg.OutputFormat)); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}

	return nil
}

// handleDotCommand processes a REPL dot-command. It reports whether the REPL
// should exit, and a non-nil dialect when the session dialect changed.
func handleDotCommand(out io.Writer, d *dialect.Dialect, line string) (quit bool, newDialect *dialect.Dialect) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".quit", ".exit":
		return true, nil
	case ".help":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  .dialect [name]  show or switch the SQL dialect")
		fmt.Fprintln(out, "  .quit            exit the REPL")
		fmt.Fprintln(out, "End a statement with ; to analyze it.")
	case ".dialect":
		if len(fields) < 2 {
			fmt.Fprintf(out, "dialect: %s (available: %s)\n", d.Name, strings.Join(dialect.List(), ", "))
			return false, nil
		}
		next, ok := dialect.Get(fields[1])
		if !ok {
			fmt.Fprintf(out, "unknown dialect %q\n", fields[1])
			return false, nil
		}
		fmt.Fprintf(out, "dialect: %s\n", next.Name)
		return false, next
	default:
		fmt.Fprintf(out, "unknown command %s (try .help)\n", fields[0])
	}
	return false, nil
}
