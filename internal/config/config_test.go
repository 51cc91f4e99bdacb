package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "SKR03", cfg.Export.Chart)
	assert.Equal(t, "10000", cfg.Export.DebtorAccount)
	assert.Equal(t, 30*time.Second, cfg.Validator.Timeout)
	assert.Equal(t, "java", cfg.Validator.JavaPath)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
export:
  chart: SKR04
  consultant_number: 12345
  client_number: 67890
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "SKR04", cfg.Export.Chart)
	assert.Equal(t, 12345, cfg.Export.ConsultantNumber)
}

func TestLoad_InvalidChart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  chart: SKR99\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SKR03 or SKR04")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}
