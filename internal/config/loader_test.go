package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luminsql/lumin/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDialect, cfg.Dialect)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultAuditPath, cfg.Audit.Path)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dialect: hive
catalog:
  driver: duckdb
  dsn: warehouse.db
  default_schema: analytics
authz:
  enabled: true
  server_name: prod
server:
  port: 9999
`), 0o644))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "hive", cfg.Dialect)
	assert.Equal(t, "duckdb", cfg.Catalog.Driver)
	assert.Equal(t, "warehouse.db", cfg.Catalog.DSN)
	assert.Equal(t, "analytics", cfg.Catalog.DefaultSchema)
	assert.True(t, cfg.Authz.Enabled)
	assert.Equal(t, "prod", cfg.Authz.ServerName)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: hive\n"), 0o644))

	t.Setenv("LUMIN_DIALECT", "snowflake")
	t.Setenv("LUMIN_CATALOG__DSN", "postgres://db")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "snowflake", cfg.Dialect)
	assert.Equal(t, "postgres://db", cfg.Catalog.DSN)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("LUMIN_DIALECT", "snowflake")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", config.DefaultDialect, "")
	flags.String("catalog", "", "")
	flags.String("dsn", "", "")
	flags.Int("port", config.DefaultPort, "")
	require.NoError(t, flags.Parse([]string{"--dialect", "hive", "--catalog", "sqlite", "--dsn", "meta.db"}))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "hive", cfg.Dialect)
	assert.Equal(t, "sqlite", cfg.Catalog.Driver)
	assert.Equal(t, "meta.db", cfg.Catalog.DSN)
	// An unchanged flag must not clobber lower layers.
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
}

func TestLoadPortFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	require.NoError(t, flags.Parse([]string{"--port", "9000"}))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadAuditFlagEnablesAuditing(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("audit", "", "")
	require.NoError(t, flags.Parse([]string{"--audit", "custom/audit.db"}))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, "custom/audit.db", cfg.Audit.Path)

	// Without the flag, auditing stays off.
	cfg, err = config.Load("", pflag.NewFlagSet("test", pflag.ContinueOnError))
	require.NoError(t, err)
	assert.False(t, cfg.Audit.Enabled)
}

func TestLoadBadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\tnot yaml"), 0o644))

	_, err := config.Load(path, nil)
	require.Error(t, err)
}
