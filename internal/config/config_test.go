package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("datasets-dir", "", "")
	fs.String("ledger-dsn", "", "")
	fs.String("format", "text", "")
	fs.Bool("verbose", false, "")
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "synq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDatasetsDir, cfg.DatasetsDir)
	assert.Equal(t, "sqlite", cfg.Ledger.Driver)
	assert.Equal(t, "synq.db", cfg.Ledger.DSN)
	assert.Equal(t, "fs", cfg.Artifacts.Backend)
	assert.Equal(t, "artifacts", cfg.Artifacts.Dir)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Source)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
datasets_dir: /data/real
ledger:
  driver: postgres
  dsn: postgres://synq@localhost/synq
artifacts:
  backend: minio
  minio:
    endpoint: localhost:9000
    access_key: minioadmin
    secret_key: minioadmin
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "/data/real", cfg.DatasetsDir)
	assert.Equal(t, "postgres", cfg.Ledger.Driver)
	assert.Equal(t, "postgres://synq@localhost/synq", cfg.Ledger.DSN)
	assert.Equal(t, "minio", cfg.Artifacts.Backend)
	assert.Equal(t, "localhost:9000", cfg.Artifacts.Minio.Endpoint)
	assert.Equal(t, "minioadmin", cfg.Artifacts.Minio.AccessKey)
	assert.False(t, cfg.Artifacts.Minio.Secure)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "datasets_dir: from-file\nledger:\n  dsn: file.db\nformat: json\n")
	t.Setenv("SYNQ_DATASETS_DIR", "from-env")
	t.Setenv("SYNQ_LEDGER_DSN", "env.db")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--datasets-dir", "from-flag"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.DatasetsDir, "flags beat env")
	assert.Equal(t, "env.db", cfg.Ledger.DSN, "env beats file")
	assert.Equal(t, "json", cfg.Format, "unset flags do not override the file")
}

func TestLoad_FindsConfigInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "synq.yaml"), []byte("datasets_dir: local\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "synq.yaml", cfg.Source)
	assert.Equal(t, "local", cfg.DatasetsDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errSub  string
	}{
		{"unknown driver", "ledger:\n  driver: mysql\n", "ledger.driver"},
		{"unknown backend", "artifacts:\n  backend: s3\n", "artifacts.backend"},
		{"minio without endpoint", "artifacts:\n  backend: minio\n", "artifacts.minio.endpoint"},
		{"bad format", "format: xml\n", "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "datasets_dir", envKey("SYNQ_DATASETS_DIR"))
	assert.Equal(t, "ledger.dsn", envKey("SYNQ_LEDGER_DSN"))
	assert.Equal(t, "artifacts.dir", envKey("SYNQ_ARTIFACTS_DIR"))
	assert.Equal(t, "artifacts.minio.access_key", envKey("SYNQ_ARTIFACTS_MINIO_ACCESS_KEY"))
}
