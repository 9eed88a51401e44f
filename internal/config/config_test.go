package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "PORT", "DATABASE_URL", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigFile_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "3005", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "gpt-4-turbo-preview", cfg.Model.Name)
	assert.Equal(t, float32(0), cfg.Model.Temperature)
	assert.True(t, cfg.Model.JSONOutput)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 4000, cfg.Model.MaxInputChars)
	assert.Equal(t, "general", cfg.Model.Variant)
	assert.Equal(t, 0.1, cfg.Normalize.Tolerance)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, map[string]int{"analysis": 1}, cfg.Worker.Queues)
	assert.False(t, cfg.HistoryEnabled())
	assert.False(t, cfg.QueueEnabled())
	assert.Equal(t, ":3005", cfg.ListenAddr())
}

func TestLoadConfigFile_YAMLAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: "8080"
model:
  provider: gemini
  name: gemini-1.5-flash
  timeout: 5s
  variant: age_demographics
normalize:
  tolerance: 0
database:
  driver: sqlite3
  dsn: "file::memory:"
pricing:
  gemini:
    gemini-pro:
      input_per_token: 0.0000001
      output_per_token: 0.0000004
`)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.Model.Provider)
	assert.Equal(t, "g-key", cfg.Model.GoogleApiKey)
	assert.Equal(t, 5*time.Second, cfg.Model.Timeout)
	assert.Equal(t, float64(0), cfg.Normalize.Tolerance)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.True(t, cfg.QueueEnabled())
	assert.InDelta(t, 0.0000004, cfg.Pricing["gemini"]["gemini-pro"].OutputPerToken, 1e-12)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFile_BadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "server: [unclosed")
	_, err := LoadConfigFile(path)
	assert.Error(t, err)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	clearEnv(t)
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	cfg.Model.OpenaiApiKey = "sk-test"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing openai key", mutate: func(c *Config) { c.Model.OpenaiApiKey = "" }, wantErr: "openai_api_key"},
		{name: "missing gemini key", mutate: func(c *Config) { c.Model.Provider = "gemini" }, wantErr: "google_api_key"},
		{name: "unknown provider", mutate: func(c *Config) { c.Model.Provider = "claude" }, wantErr: "not supported"},
		{name: "unknown variant", mutate: func(c *Config) { c.Model.Variant = "income" }, wantErr: "model.variant"},
		{name: "zero timeout", mutate: func(c *Config) { c.Model.Timeout = 0 }, wantErr: "model.timeout"},
		{name: "negative tolerance", mutate: func(c *Config) { c.Normalize.Tolerance = -1 }, wantErr: "tolerance"},
		{name: "bad driver", mutate: func(c *Config) { c.Database.DSN = "x"; c.Database.Driver = "mysql" }, wantErr: "database.driver"},
		{name: "bad mode", mutate: func(c *Config) { c.Server.Mode = "prod" }, wantErr: "server.mode"},
		{name: "cors origin without scheme", mutate: func(c *Config) { c.Server.CORSOrigins = []string{"app.example.com"} }, wantErr: "server.cors_origins"},
		{name: "cors origin list", mutate: func(c *Config) { c.Server.CORSOrigins = []string{"https://app.example.com", "http://localhost:5173"} }},
		{name: "no queues", mutate: func(c *Config) { c.Worker.Queues = nil }, wantErr: "worker.queues"},
		{name: "negative price", mutate: func(c *Config) {
			c.Pricing = map[string]map[string]PricingInfo{"openai": {"gpt-4o": {InputPerToken: -1}}}
		}, wantErr: "negative token cost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadPromptContent(t *testing.T) {
	content, err := LoadPromptContent("")
	require.NoError(t, err)
	assert.Empty(t, content)

	path := writeFile(t, t.TempDir(), "prompt.txt", "  Extract age brackets.\n")
	content, err = LoadPromptContent(path)
	require.NoError(t, err)
	assert.Equal(t, "Extract age brackets.", content)

	_, err = LoadPromptContent(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)

	empty := writeFile(t, t.TempDir(), "empty.txt", "   ")
	_, err = LoadPromptContent(empty)
	assert.Error(t, err)
}
