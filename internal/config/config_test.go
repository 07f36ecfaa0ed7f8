package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bounty-recon/internal/defillama"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDefiLlamaBaseURL, EnvDefiLlamaTimeout, EnvPostgresDSN, EnvClickhouseDSN, EnvPushgatewayURL, EnvVerbose} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, defillama.DefaultBaseURL, cfg.DefiLlama.BaseURL)
	assert.Equal(t, defillama.DefaultTimeout, cfg.FetchTimeout())
	assert.Equal(t, DefaultMetricsJob, cfg.Metrics.Job)
	assert.Empty(t, cfg.Storage.PostgresDSN)
	assert.False(t, cfg.Verbose)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "recon.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
defillama:
  base_url: http://file.example
  timeout: 10s
storage:
  postgres_dsn: postgres://file
metrics:
  job: nightly
verbose: true
`), 0o644))

	t.Setenv(EnvDefiLlamaBaseURL, "http://env.example")
	t.Setenv(EnvClickhouseDSN, "clickhouse://env:9000/recon")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.DefiLlama.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
	assert.Equal(t, "postgres://file", cfg.Storage.PostgresDSN)
	assert.Equal(t, "clickhouse://env:9000/recon", cfg.Storage.ClickhouseDSN)
	assert.Equal(t, "nightly", cfg.Metrics.Job)
	assert.True(t, cfg.Verbose)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("defillama: [unclosed"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestApplyEnv_Verbose(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	t.Setenv(EnvVerbose, "1")
	cfg.ApplyEnv()
	assert.True(t, cfg.Verbose)

	t.Setenv(EnvVerbose, "not-a-bool")
	cfg.ApplyEnv()
	assert.True(t, cfg.Verbose, "unparseable values are ignored")
}

func TestParseTimeout(t *testing.T) {
	fallback := 30 * time.Second
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"45s", 45 * time.Second},
		{"1m30s", 90 * time.Second},
		{"12", 12 * time.Second},
		{" 5 ", 5 * time.Second},
		{"", fallback},
		{"0", fallback},
		{"-3s", fallback},
		{"soon", fallback},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTimeout(tt.in, fallback), "ParseTimeout(%q)", tt.in)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
RECON_TEST_PLAIN=value
export RECON_TEST_EXPORTED = spaced
RECON_TEST_QUOTED="with = sign"
RECON_TEST_EXISTING=from-file
not a pair
`), 0o644))

	t.Setenv("RECON_TEST_EXISTING", "from-env")
	for _, k := range []string{"RECON_TEST_PLAIN", "RECON_TEST_EXPORTED", "RECON_TEST_QUOTED"} {
		t.Setenv(k, "")
	}

	LoadEnvFile(path)

	assert.Equal(t, "value", os.Getenv("RECON_TEST_PLAIN"))
	assert.Equal(t, "spaced", os.Getenv("RECON_TEST_EXPORTED"))
	assert.Equal(t, "with = sign", os.Getenv("RECON_TEST_QUOTED"))
	assert.Equal(t, "from-env", os.Getenv("RECON_TEST_EXISTING"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NotPanics(t, func() { LoadEnvFile(filepath.Join(t.TempDir(), "nope")) })
}
