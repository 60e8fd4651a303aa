package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFile_Valid(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
karma:
  alice@example.com: 3
thresholds: [140, 70]
workers: 2
log:
  level: warn
`)

	issues, err := ValidateFile(path)

	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateFile_EmptyFile(t *testing.T) {
	t.Parallel()

	issues, err := ValidateFile(writeConfigFile(t, ""))

	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateFile_UnknownKey(t *testing.T) {
	t.Parallel()

	issues, err := ValidateFile(writeConfigFile(t, "pipeline:\n  workers: 2\n"))

	require.NoError(t, err)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Description, "pipeline")
}

func TestValidateFile_NegativeKarma(t *testing.T) {
	t.Parallel()

	issues, err := ValidateFile(writeConfigFile(t, "karma:\n  alice: -1\n"))

	require.NoError(t, err)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].Field, "karma")
}

func TestValidateFile_BadLogLevel(t *testing.T) {
	t.Parallel()

	issues, err := ValidateFile(writeConfigFile(t, "log:\n  level: loud\n"))

	require.NoError(t, err)
	assert.NotEmpty(t, issues)
}

func TestValidateFile_MissingFile(t *testing.T) {
	t.Parallel()

	issues, err := ValidateFile("/nonexistent/config.yaml")

	assert.Nil(t, issues)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestValidateFile_NotYAML(t *testing.T) {
	t.Parallel()

	issues, err := ValidateFile(writeConfigFile(t, "karma: [not: a: map"))

	assert.Nil(t, issues)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml")
}
