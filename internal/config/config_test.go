package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colorsYAML = `
store: memory
log:
  level: debug
reconcile:
  delete_missing: true
server:
  port: 8080
models:
  - name: Color
    columns: [hex]
    entries:
      - name: black
        id: 1
        attributes:
          hex: "#000000"
      - name: dark_grey
        id: "3"
        label: Dark Grey
  - name: Size
    table: shirt_sizes
    label_column: code
    entries:
      - name: small
        id: 1
`

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "enumbler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StoreSQL, cfg.Store)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "enumbler:", cfg.Redis.Prefix)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Reconcile.Validate)
	assert.True(t, cfg.Reconcile.Atomic)
	assert.False(t, cfg.Reconcile.DeleteMissing)
	assert.Equal(t, "localhost:3000", cfg.Server.Addr())
	assert.Empty(t, cfg.Models)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, colorsYAML)
	chdir(t, filepath.Dir(path))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Reconcile.Options().DeleteMissing)
	assert.True(t, cfg.Reconcile.Options().Validate)

	require.Len(t, cfg.Models, 2)
	color := cfg.Models[0]
	assert.Equal(t, "Color", color.Name)
	assert.Equal(t, []string{"hex"}, color.Columns)
	require.Len(t, color.Entries, 2)
	assert.Equal(t, "#000000", color.Entries[0].Attributes["hex"])
	assert.Equal(t, "3", color.Entries[1].ID)
	assert.Equal(t, "Dark Grey", color.Entries[1].Label)

	size, ok := cfg.Model("size")
	require.True(t, ok)
	assert.Equal(t, "shirt_sizes", size.Table)
	assert.Equal(t, "code", size.LabelColumn)

	_, ok = cfg.Model("Shape")
	assert.False(t, ok)
}

func TestLoad_ExplicitPath(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, colorsYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Models, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENUMBLER_STORE", "redis")
	t.Setenv("ENUMBLER_REDIS_ADDR", "cache:6380")
	t.Setenv("ENUMBLER_SERVER_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/enums")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/enums", cfg.Database.URL)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown store",
			content: "store: etcd\n",
			wantErr: "store must be one of",
		},
		{
			name:    "unknown driver",
			content: "database:\n  driver: mysql\n",
			wantErr: "database.driver must be one of",
		},
		{
			name:    "bad port",
			content: "server:\n  port: 70000\n",
			wantErr: "server.port must be between",
		},
		{
			name:    "model without name",
			content: "models:\n  - table: colors\n",
			wantErr: "models[0].name is required",
		},
		{
			name:    "duplicate model",
			content: "models:\n  - name: Color\n  - name: color\n",
			wantErr: `models[1].name "color" is declared twice`,
		},
		{
			name:    "entry without id",
			content: "models:\n  - name: Color\n    entries:\n      - name: black\n",
			wantErr: "models[0].entries[0].id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
