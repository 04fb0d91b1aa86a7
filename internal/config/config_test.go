package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("", "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultRequestTimeout, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "precios_cierre_bolsa.csv", cfg.Data.SourceFile)
	assert.Equal(t, "@every 30s", cfg.Data.RefreshSchedule)
	assert.Equal(t, "Dashboard IBEX35", cfg.Dashboard.Title)
	assert.Equal(t, "Dashboard IBEX35 Profesional", cfg.Dashboard.Heading)
	assert.Equal(t, 600, cfg.Dashboard.GridHeight)
	assert.Equal(t, "alpine", cfg.Dashboard.Theme)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
}

func TestLoadFrom_Precedence(t *testing.T) {
	yamlFile := writeFile(t, "config.yaml", `
server:
  port: 9000
data:
  source_file: from-yaml.csv
dashboard:
  grid_height: 480
logging:
  level: debug
`)
	envFile := writeFile(t, ".env", "IBEX_DATA_SOURCE_FILE=from-dotenv.csv\nIBEX_DASHBOARD_THEME=balham\n")

	t.Setenv("IBEX_SERVER_PORT", "9100")
	t.Setenv("IBEX_DASHBOARD_THEME", "material")
	t.Cleanup(func() { os.Unsetenv("IBEX_DATA_SOURCE_FILE") })

	cfg, err := LoadFrom(yamlFile, envFile)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "environment beats yaml")
	assert.Equal(t, "from-dotenv.csv", cfg.Data.SourceFile, ".env beats yaml")
	assert.Equal(t, "material", cfg.Dashboard.Theme, "environment beats .env")
	assert.Equal(t, 480, cfg.Dashboard.GridHeight)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "defaults survive partial yaml")
}

func TestLoadFrom_MissingFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "none.yaml"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	_, err := LoadFrom(writeFile(t, "config.yaml", "server: [not a map"), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestLoadFrom_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad port", env: map[string]string{"IBEX_SERVER_PORT": "70000"}},
		{name: "bad schedule", env: map[string]string{"IBEX_DATA_REFRESH_SCHEDULE": "every now and then"}},
		{name: "bad level", env: map[string]string{"IBEX_LOGGING_LEVEL": "loud"}},
		{name: "bad output", env: map[string]string{"IBEX_LOGGING_OUTPUT": "printer"}},
		{name: "bad exporter", env: map[string]string{"IBEX_TELEMETRY_TRACE_EXPORTER": "jaeger"}},
		{name: "bad admin hash", env: map[string]string{"IBEX_SECURITY_ADMIN_TOKEN_HASH": "plain-text"}},
		{name: "zero grid height", env: map[string]string{"IBEX_DASHBOARD_GRID_HEIGHT": "0"}},
		{name: "not a number", env: map[string]string{"IBEX_SERVER_PORT": "eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom("", "")
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
		})
	}
}

func TestLoadFrom_AdminTokenHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("IBEX_SECURITY_ADMIN_TOKEN_HASH", string(hash))

	cfg, err := LoadFrom("", "")
	require.NoError(t, err)
	assert.Equal(t, string(hash), cfg.Security.AdminTokenHash)
}

func TestLoadFrom_EmptyScheduleDisablesRefresh(t *testing.T) {
	t.Setenv("IBEX_DATA_REFRESH_SCHEDULE", "")

	cfg, err := LoadFrom("", "")
	require.NoError(t, err)
	assert.Empty(t, cfg.Data.RefreshSchedule)
}
