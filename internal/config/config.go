// Package config loads runtime settings for the synq command.
//
// Precedence, highest first: explicitly set flags, SYNQ_* environment
// variables, the config file (synq.yaml), built-in defaults.
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

	"github.com/roach88/synq/internal/artifact"
)

// Defaults.
const (
	DefaultDatasetsDir  = "datasets"
	DefaultLedgerDriver = "sqlite"
	DefaultLedgerDSN    = "synq.db"
	DefaultBackend      = "fs"
	DefaultArtifactsDir = "artifacts"
	DefaultFormat       = "text"

	envPrefix = "SYNQ_"
)

// Config is the resolved runtime configuration.
type Config struct {
	DatasetsDir string          `koanf:"datasets_dir"`
	Ledger      LedgerConfig    `koanf:"ledger"`
	Artifacts   ArtifactsConfig `koanf:"artifacts"`
	Verbose     bool            `koanf:"verbose"`
	Format      string          `koanf:"format"`

	// Source is the config file that was read, "" if none.
	Source string `koanf:"-"`
}

// LedgerConfig selects the computation ledger.
type LedgerConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// ArtifactsConfig selects the artifact store.
type ArtifactsConfig struct {
	Backend string               `koanf:"backend"`
	Dir     string               `koanf:"dir"`
	Minio   artifact.MinioConfig `koanf:"minio"`
}

// flagKeys maps flag names to config keys. Flags not listed here (such as
// --config) are not configuration values.
var flagKeys = map[string]string{
	"datasets-dir":  "datasets_dir",
	"ledger-driver": "ledger.driver",
	"ledger-dsn":    "ledger.dsn",
	"artifacts-dir": "artifacts.dir",
	"backend":       "artifacts.backend",
	"verbose":       "verbose",
	"format":        "format",
}

// findConfigFile returns the config file to read.
// Priority: explicit path > synq.yaml > synq.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"synq.yaml", "synq.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envKey maps SYNQ_LEDGER_DSN to ledger.dsn and SYNQ_ARTIFACTS_MINIO_ACCESS_KEY
// to artifacts.minio.access_key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range []string{"artifacts_minio_", "artifacts_", "ledger_"} {
		if rest, ok := strings.CutPrefix(key, section); ok {
			return strings.ReplaceAll(section, "_", ".") + rest
		}
	}
	return key
}

// Load reads configuration from defaults, cfgFile (or synq.yaml in the
// working directory), the environment and flags. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"datasets_dir":      DefaultDatasetsDir,
		"ledger.driver":     DefaultLedgerDriver,
		"ledger.dsn":        DefaultLedgerDSN,
		"artifacts.backend": DefaultBackend,
		"artifacts.dir":     DefaultArtifactsDir,
		"verbose":           false,
		"format":            DefaultFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	source := findConfigFile(cfgFile)
	if source != "" {
		if err := k.Load(file.Provider(source), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", source, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Ledger.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("ledger.driver: unknown driver %q (want sqlite or postgres)", c.Ledger.Driver)
	}
	if c.Ledger.DSN == "" {
		return fmt.Errorf("ledger.dsn: required")
	}
	switch c.Artifacts.Backend {
	case "fs":
		if c.Artifacts.Dir == "" {
			return fmt.Errorf("artifacts.dir: required for the fs backend")
		}
	case "minio":
		if c.Artifacts.Minio.Endpoint == "" {
			return fmt.Errorf("artifacts.minio.endpoint: required for the minio backend")
		}
	default:
		return fmt.Errorf("artifacts.backend: unknown backend %q (want fs or minio)", c.Artifacts.Backend)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format: invalid format %q (want text or json)", c.Format)
	}
	return nil
}
