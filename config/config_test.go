package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(writeConfig(t, ""), "kerncheck.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "d", cfg.Precision)
	assert.Equal(t, "table", cfg.Format)
	assert.Equal(t, 1024, cfg.Bench.N)
	assert.Equal(t, 1, cfg.Bench.Inc)
	assert.Equal(t, 10, cfg.Bench.Iters)
	assert.EqualValues(t, 1, cfg.Bench.Seed)
}

func TestLoadFromFile(t *testing.T) {
	dir := writeConfig(t, `
log_level: debug
precision: s
bench:
  n: 4096
  inc: 3
  iters: 25
  perf: true
  norm_check: true
  mem_query: true
  profile: 2
  profile_kernels: true
`)
	cfg, err := Load(filepath.Join(dir, "kerncheck.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "s", cfg.Precision)
	assert.Equal(t, 4096, cfg.Bench.N)
	assert.Equal(t, 3, cfg.Bench.Inc)
	assert.Equal(t, 25, cfg.Bench.Iters)
	assert.True(t, cfg.Bench.Perf)
	assert.True(t, cfg.Bench.NormCheck)
	assert.True(t, cfg.Bench.MemQuery)
	assert.Equal(t, 2, cfg.Bench.Profile)
	assert.True(t, cfg.Bench.ProfileKernels)
	// untouched keys keep their defaults
	assert.Equal(t, "table", cfg.Format)
	assert.EqualValues(t, 1, cfg.Bench.Seed)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("KERNCHECK_BENCH_N", "77")
	t.Setenv("KERNCHECK_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(writeConfig(t, ""), "kerncheck.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 77, cfg.Bench.N)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kerncheck.yaml"), []byte(body), 0o644))
	return dir
}
