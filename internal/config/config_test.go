package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".gitkarma.yaml")

	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)

	return path
}

func TestLoadConfig_ExplicitPathMissing(t *testing.T) {
	t.Parallel()

	// An explicit path that does not exist is an error; only the
	// search-path variant tolerates absence.
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Nil(t, cfg)
	require.Error(t, err)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(writeConfigFile(t, ""))
	require.NoError(t, err)

	assert.Empty(t, cfg.Karma)
	assert.Equal(t, DefaultFileExtension, cfg.File.Extension)
	assert.Equal(t, DefaultThresholds, cfg.Thresholds)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.True(t, cfg.Skip.Vendored)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultReportDir, cfg.Report.Dir)
}

func TestLoadConfig_FullFile(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
karma:
  alice@example.com: 3
  bob: 1
url:
  commit: https://git.example.com/commit/{commit}
  author: https://git.example.com/people/{author}
file:
  extension: .htm
thresholds: [50, 10]
workers: 4
skip:
  patterns: ["*.pb.go"]
  vendored: false
log:
  level: debug
  json: true
report:
  dir: out
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"alice@example.com": 3, "bob": 1}, cfg.Karma)
	assert.Equal(t, "https://git.example.com/commit/{commit}", cfg.URL.Commit)
	assert.Equal(t, "https://git.example.com/people/{author}", cfg.URL.Author)
	assert.Equal(t, ".htm", cfg.File.Extension)
	assert.Equal(t, []int{50, 10}, cfg.Thresholds)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"*.pb.go"}, cfg.Skip.Patterns)
	assert.False(t, cfg.Skip.Vendored)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "out", cfg.Report.Dir)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(writeConfigFile(t, "karma: [not: a: map"))

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(writeConfigFile(t, "workers: -1"))

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
}

func TestConfigValidate_NegativeKarma(t *testing.T) {
	t.Parallel()

	cfg := Config{Karma: map[string]int{"alice": -1}}

	assert.ErrorIs(t, cfg.Validate(), ErrNegativeKarma)
}

func TestConfigValidate_NegativeWorkers(t *testing.T) {
	t.Parallel()

	cfg := Config{Workers: -2}

	assert.ErrorIs(t, cfg.Validate(), ErrInvalidWorkers)
}

func TestConfigValidate_ZeroThreshold(t *testing.T) {
	t.Parallel()

	cfg := Config{Thresholds: []int{10, 0}}

	assert.ErrorIs(t, cfg.Validate(), ErrInvalidThreshold)
}

func TestConfigValidate_ExtensionWithoutDot(t *testing.T) {
	t.Parallel()

	cfg := Config{File: FileConfig{Extension: "html"}}

	assert.ErrorIs(t, cfg.Validate(), ErrInvalidExtension)
}

func TestConfigValidate_UnknownLogLevel(t *testing.T) {
	t.Parallel()

	cfg := Config{Log: LogConfig{Level: "loud"}}

	assert.ErrorIs(t, cfg.Validate(), ErrInvalidLogLevel)
}

func TestConfigValidate_EmptyIsValid(t *testing.T) {
	t.Parallel()

	cfg := Config{}

	assert.NoError(t, cfg.Validate())
}
