package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/luminsql/lumin/internal/audit"
	"github.com/luminsql/lumin/pkg/analysis"
	"github.com/luminsql/lumin/pkg/catalog"
	"github.com/luminsql/lumin/pkg/dialect"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	Format string // Output format override
	Watch  bool   // Re-analyze on file changes
	Jobs   int    // Parallel analysis workers
}

// fileResult is the analysis outcome for one input file.
type fileResult struct {
	Path   string
	Report *analysis.Report
	Err    error // parse or read failure
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze SQL statements against the catalog",
		Long: `Analyze SQL statements: resolve WITH-clause definitions and table
references, report unresolvable objects, and list the access events and
privilege requests each statement generates.

Reads from stdin when no files are given or when the file is "-".`,
		Example: `  # Analyze a file
  lumin analyze query.sql

  # Analyze from stdin
  echo 'WITH v AS (SELECT 1) SELECT * FROM v' | lumin analyze

  # Analyze a directory tree, re-running on changes
  lumin analyze queries/ --watch

  # Machine-readable output
  lumin analyze query.sql -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, plain, json")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-analyze when input files change")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 4, "Parallel analysis workers")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
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

	d, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
		return err
	}

	mode := opts.Format
	if mode == "" {
		mode = cfg.OutputFormat
	}
	mode = effectiveMode(mode)

	// Stdin input: a single anonymous statement.
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		sql, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		res := analyzeOne(cmd.Context(), cat, d, store, "<stdin>", string(sql))
		if err := renderResults(cmd.OutOrStdout(), []fileResult{res}, mode); err != nil {
			return err
		}
		return resultErr([]fileResult{res})
	}

	paths, err := collectSQLFiles(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .sql files found")
	}

	run := func(ctx context.Context) error {
		results, err := analyzeFiles(ctx, cat, d, store, paths, opts.Jobs)
		if err != nil {
			return err
		}
		if err := renderResults(cmd.OutOrStdout(), results, mode); err != nil {
			return err
		}
		return resultErr(results)
	}

	if opts.Watch {
		return watchAndRun(cmd, args, run)
	}
	return run(cmd.Context())
}

// analyzeFiles analyzes the given files with a bounded worker pool, keeping
// results in input order.
func analyzeFiles(ctx context.Context, cat catalog.Catalog, d *dialect.Dialect, store *audit.Store, paths []string, jobs int) ([]fileResult, error) {
	if jobs < 1 {
		jobs = 1
	}

	results := make([]fileResult, len(paths))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)

	var mu sync.Mutex
	for i, path := range paths {
		eg.Go(func() error {
			data, err := os.ReadFile(path)
			var res fileResult
			if err != nil {
				res = fileResult{Path: path, Err: err}
			} else {
				res = analyzeOne(egctx, cat, d, store, path, string(data))
			}
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func analyzeOne(ctx context.Context, cat catalog.Catalog, d *dialect.Dialect, store *audit.Store, path, sql string) fileResult {
	qctx := analysis.QueryContext{User: cfg.User, DefaultSchema: cfg.Catalog.DefaultSchema}
	acfg := analysis.AuthzConfig{Enabled: cfg.Authz.Enabled, ServerName: cfg.Authz.ServerName}

	report, err := analysis.AnalyzeSQL(ctx, sql, cat, d, qctx, acfg)
	if err != nil {
		return fileResult{Path: path, Err: err}
	}

	if store != nil {
		rec := &audit.Record{
			User:              cfg.User,
			Dialect:           d.Name,
			SQL:               sql,
			OK:                report.OK(),
			AccessEvents:      report.AccessEvents,
			PrivilegeRequests: report.PrivilegeRequests,
			MissingObjects:    report.MissingObjects,
		}
		if report.Err != nil {
			rec.Error = report.Err.Error()
		}
		if _, err := store.RecordAnalysis(ctx, rec); err != nil {
			logger.Error("failed to record analysis", "path", path, "error", err)
		}
	}

	return fileResult{Path: path, Report: report}
}

// collectSQLFiles expands the given paths: directories are walked for .sql
// files, plain files are taken as-is.
func collectSQLFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() && strings.HasSuffix(path, ".sql") {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// resultErr returns an error if any result failed, so the command exits
// non-zero.
func resultErr(results []fileResult) error {
	failed := 0
	for _, res := range results {
		if res.Err != nil || !res.Report.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d statements failed analysis", failed, len(results))
	}
	return nil
}

// watchAndRun runs fn once, then re-runs it on file changes until the
// context is cancelled.
func watchAndRun(cmd *cobra.Command, args []string, fn func(context.Context) error) error {
	ctx := cmd.Context()

	if err := fn(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, arg := range args {
		if err := watcher.Add(arg); err != nil {
			return fmt.Errorf("failed to watch %s: %w", arg, err)
		}
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes... (ctrl-c to stop)")

	// Debounce rapid bursts of events (editors often write twice).
	var debounce *time.Timer
	rerun := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		case <-rerun:
			if err := fn(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
		}
	}
}

// renderResults renders analysis results in the requested mode.
func renderResults(w io.Writer, results []fileResult, mode string) error {
	if mode == ModeJSON {
		return renderResultsJSON(w, results)
	}
	styled := mode == ModeText
	styles := DefaultStyles()

	for _, res := range results {
		header := res.Path
		if styled {
			header = styles.Header.Render(header)
		}
		fmt.Fprintln(w, header)

		switch {
		case res.Err != nil:
			msg := "error: " + res.Err.Error()
			if styled {
				msg = styles.Error.Render(msg)
			}
			fmt.Fprintln(w, msg)
		case !res.Report.OK():
			msg := res.Report.Err.Error()
			if styled {
				msg = styles.Error.Render(msg)
			}
			fmt.Fprintln(w, msg)
			renderMissing(w, res.Report.MissingObjects, styles, styled)
		default:
			ok := "ok"
			if styled {
				ok = styles.Success.Render(ok)
			}
			fmt.Fprintln(w, ok)
			renderReportTables(w, res.Report)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func renderMissing(w io.Writer, missing []string, styles *Styles, styled bool) {
	for _, name := range missing {
		line := "  missing: " + name
		if styled {
			line = styles.Warning.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

func renderReportTables(w io.Writer, report *analysis.Report) {
	if len(report.AccessEvents) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Object", "Type", "Privilege"})
		for _, ev := range report.AccessEvents {
			t.AppendRow(table.Row{ev.Name, string(ev.Type), string(ev.Privilege)})
		}
		t.Render()
	}
	if len(report.PrivilegeRequests) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Requested Object", "Privilege"})
		for _, req := range report.PrivilegeRequests {
			t.AppendRow(table.Row{req.Object, string(req.Privilege)})
		}
		t.Render()
	}
}

func renderResultsJSON(w io.Writer, results []fileResult) error {
	type jsonEvent struct {
		Name      string `json:"name"`
		Type      string `json:"type"`
		Privilege string `json:"privilege"`
	}
	type jsonRequest struct {
		Object    string `json:"object"`
		Privilege string `json:"privilege"`
	}
	type jsonResult struct {
		Path              string        `json:"path"`
		OK                bool          `json:"ok"`
		Error             string        `json:"error,omitempty"`
		MissingObjects    []string      `json:"missingObjects,omitempty"`
		AccessEvents      []jsonEvent   `json:"accessEvents,omitempty"`
		PrivilegeRequests []jsonRequest `json:"privilegeRequests,omitempty"`
	}

	out := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{Path: res.Path}
		switch {
		case res.Err != nil:
			jr.Error = res.Err.Error()
		case res.Report.Err != nil:
			jr.Error = res.Report.Err.Error()
			jr.MissingObjects = res.Report.MissingObjects
		default:
			jr.OK = true
			jr.MissingObjects = res.Report.MissingObjects
			for _, ev := range res.Report.AccessEvents {
				jr.AccessEvents = append(jr.AccessEvents, jsonEvent{
					Name: ev.Name, Type: string(ev.Type), Privilege: string(ev.Privilege),
				})
			}
			for _, req := range res.Report.PrivilegeRequests {
				jr.PrivilegeRequests = append(jr.PrivilegeRequests, jsonRequest{
					Object: req.Object, Privilege: string(req.Privilege),
				})
			}
		}
		out = append(out, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
