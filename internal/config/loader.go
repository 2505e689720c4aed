package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// flagKeys maps CLI flag names onto their config keys where the two differ.
var flagKeys = map[string]string{
	"catalog":        "catalog.driver",
	"dsn":            "catalog.dsn",
	"schema":         "catalog.schema_file",
	"default-schema": "catalog.default_schema",
	"audit":          "audit.path",
	"port":           "server.port",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > lumin.yaml > lumin.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"lumin.yaml", "lumin.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"dialect":     DefaultDialect,
		"verbose":     false,
		"output":      DefaultOutput,
		"audit.path":  DefaultAuditPath,
		"server.port": DefaultPort,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables (LUMIN_ prefix)
	// Double underscore nests: LUMIN_CATALOG__DSN -> catalog.dsn,
	// LUMIN_CATALOG__SCHEMA_FILE -> catalog.schema_file.
	if err := k.Load(env.Provider("LUMIN_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "LUMIN_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := f.Name
			// Short flag names bridge onto nested config keys.
			if mapped, ok := flagKeys[key]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}

		// Naming an audit database on the command line turns auditing on;
		// requiring a separate enable toggle alongside the path would make
		// --audit a silent no-op.
		if f := flags.Lookup("audit"); f != nil && f.Changed {
			if err := k.Set("audit.enabled", true); err != nil {
				return nil, fmt.Errorf("failed to enable auditing: %w", err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
