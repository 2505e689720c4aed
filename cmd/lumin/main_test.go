// Package main provides tests for the lumin CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luminsql/lumin/internal/cli"
)

func writeSchemaFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	data := []byte(`
default_schema: main
tables:
  - name: orders
    columns:
      - {name: id, type: integer}
      - {name: total, type: decimal}
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write schema file: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "lumin") {
		t.Errorf("version output should contain 'lumin', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	for _, expected := range []string{"analyze", "fmt", "serve", "repl", "version"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain %q, got: %s", expected, output)
		}
	}
}

func TestAnalyzeCommandStdin(t *testing.T) {
	schema := writeSchemaFile(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader("WITH v AS (SELECT * FROM orders) SELECT * FROM v"))
	cmd.SetArgs([]string{"analyze", "--catalog", "file", "--schema", schema, "-o", "plain"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("analyze command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "main.orders") {
		t.Errorf("analyze output should contain 'main.orders', got: %s", output)
	}
}

func TestAnalyzeCommandMissingObject(t *testing.T) {
	schema := writeSchemaFile(t)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader("WITH v AS (SELECT * FROM nope) SELECT * FROM v"))
	cmd.SetArgs([]string{"analyze", "--catalog", "file", "--schema", schema, "-o", "plain"})

	if err := cmd.Execute(); err == nil {
		t.Error("analyze of a missing object should return an error")
	}

	if !strings.Contains(buf.String(), "nope") {
		t.Errorf("analyze output should name the missing object, got: %s", buf.String())
	}
}

func TestAnalyzeCommandFiles(t *testing.T) {
	schema := writeSchemaFile(t)
	dir := t.TempDir()
	queryPath := filepath.Join(dir, "query.sql")
	if err := os.WriteFile(queryPath, []byte("SELECT * FROM orders"), 0o644); err != nil {
		t.Fatalf("failed to write query file: %v", err)
	}

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"analyze", queryPath, "--catalog", "file", "--schema", schema, "-o", "json"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("analyze command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"ok": true`) {
		t.Errorf("json output should report ok, got: %s", output)
	}
}

func TestServeHelpListsPortFlag(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"serve", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("serve help error = %v", err)
	}

	if !strings.Contains(buf.String(), "--port") {
		t.Errorf("serve help should list --port, got: %s", buf.String())
	}
}

func TestAnalyzeCommandAuditFlag(t *testing.T) {
	schema := writeSchemaFile(t)
	auditPath := filepath.Join(t.TempDir(), "audit.db")

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader("SELECT * FROM orders"))
	cmd.SetArgs([]string{"analyze", "--catalog", "file", "--schema", schema, "--audit", auditPath, "-o", "plain"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("analyze command error = %v", err)
	}

	// Naming an audit path on the command line enables persistence.
	if _, err := os.Stat(auditPath); err != nil {
		t.Errorf("audit database should exist at %s: %v", auditPath, err)
	}
}

func TestFmtCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(`with a as (select 1),"b-c" as (select * from a) select 1`))
	cmd.SetArgs([]string{"fmt"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("fmt command error = %v", err)
	}

	output := strings.TrimSpace(buf.String())
	want := `WITH a AS (SELECT 1),"b-c" AS (SELECT * FROM a) SELECT 1`
	if output != want {
		t.Errorf("fmt output = %q, want %q", output, want)
	}
}

func TestAnalyzeCommandUnknownDialect(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader("SELECT 1"))
	cmd.SetArgs([]string{"analyze", "--dialect", "oracle9"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("unknown dialect should return an error")
	}
	if !strings.Contains(err.Error(), "unknown dialect") {
		t.Errorf("error should name the unknown dialect, got: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"unknown-command"})

	if err := cmd.Execute(); err == nil {
		t.Error("unknown command should return an error")
	}
}
