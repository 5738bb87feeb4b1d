package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Model.Name)
	assert.Equal(t, 5*time.Minute, cfg.Model.Timeout)
	assert.Equal(t, "59.0", cfg.Salesforce.APIVersion)
	assert.Equal(t, BackendMemory, cfg.Sessions.Backend)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: "server.addr",
		},
		{
			name:    "missing provider",
			mutate:  func(c *Config) { c.Model.Provider = "" },
			wantErr: "model.provider",
		},
		{
			name:    "missing model name",
			mutate:  func(c *Config) { c.Model.Name = "" },
			wantErr: "model.name",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Sessions.Backend = "redis" },
			wantErr: "sessions.backend",
		},
		{
			name:    "nats backend without url",
			mutate:  func(c *Config) { c.Sessions.Backend = BackendNATS },
			wantErr: "sessions.nats_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNATSBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sessions.Backend = BackendNATS
	cfg.Sessions.NATSURL = "nats://localhost:4222"
	assert.NoError(t, cfg.Validate())
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		Server: ServerConfig{Addr: ":9000"},
		Model:  ModelConfig{Name: "claude-3-opus-20240229"},
	})

	assert.Equal(t, ":9000", base.Server.Addr)
	assert.Equal(t, "claude-3-opus-20240229", base.Model.Name)

	// Untouched fields keep their previous values.
	assert.Equal(t, "anthropic", base.Model.Provider)
	assert.Equal(t, "59.0", base.Salesforce.APIVersion)
}

func TestMergeNil(t *testing.T) {
	base := DefaultConfig()
	base.Merge(nil)
	assert.Equal(t, ":8000", base.Server.Addr)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptforge.yaml")
	content := `
server:
  addr: ":9090"
model:
  provider: openai
  name: gpt-4o
  timeout: 90s
sessions:
  backend: nats
  nats_url: nats://localhost:4222
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, 90*time.Second, cfg.Model.Timeout)
	assert.Equal(t, BackendNATS, cfg.Sessions.Backend)

	// Keys absent from the file fall back to defaults.
	assert.Equal(t, "59.0", cfg.Salesforce.APIVersion)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":7777"
	require.NoError(t, cfg.SaveToFile(path))

	back, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", back.Server.Addr)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PROMPTFORGE_ADDR", ":6000")
	t.Setenv("PROMPTFORGE_MODEL_PROVIDER", "openai")
	t.Setenv("PROMPTFORGE_MODEL_TIMEOUT", "30s")
	t.Setenv("PROMPTFORGE_SESSIONS_BACKEND", "nats")
	t.Setenv("PROMPTFORGE_NATS_URL", "nats://broker:4222")

	cfg := fromEnv()

	assert.Equal(t, ":6000", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout)
	assert.Equal(t, "nats", cfg.Sessions.Backend)
	assert.Equal(t, "nats://broker:4222", cfg.Sessions.NATSURL)
}

func TestFromEnvIgnoresBadTimeout(t *testing.T) {
	t.Setenv("PROMPTFORGE_MODEL_TIMEOUT", "not-a-duration")

	cfg := fromEnv()
	assert.Zero(t, cfg.Model.Timeout)
}

func TestLoaderFileOverridesAndEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0644))

	t.Setenv("PROMPTFORGE_ADDR", ":6000")

	cfg, err := NewLoader(nil).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Server.Addr)
}
