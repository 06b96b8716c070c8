package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/mcp-adapters/internal/apperr"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "https://www.alphavantage.co/query", cfg.AlphaVantage.BaseURL)
	assert.Empty(t, cfg.AlphaVantage.APIKey)
	assert.Equal(t, "zhipu", cfg.LLM.Provider)
	assert.Equal(t, "glm-4", cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stdio", cfg.Serve.Transport)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Serve.SessionIdle)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ALPHA_VANTAGE_API_KEY", "demo")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("LLM_MODEL", "llama3")
	t.Setenv("MCP_TRANSPORT", "http")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.AlphaVantage.APIKey)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, "http", cfg.Serve.Transport)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MCP_TRANSPORT", "http")
	t.Setenv("LOG_LEVEL", "warn")

	t.Setenv("MCP_SESSION_IDLE", "5m")

	cfg, err := Load(newFlags(t, "--transport", "websocket", "--addr", "127.0.0.1:9999", "--session-idle", "90s"))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Serve.SessionIdle)

	assert.Equal(t, "websocket", cfg.Serve.Transport)
	assert.Equal(t, "127.0.0.1:9999", cfg.Serve.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_DefaultEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultEnvFile),
		[]byte("ALPHA_VANTAGE_API_KEY=from-file\nLLM_API_KEY=secret\n"), 0o600))

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.AlphaVantage.APIKey)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(path, []byte("LLM_MODEL=from-file\nLLM_PROVIDER=openai\n"), 0o600))
	t.Setenv("LLM_MODEL", "from-env")

	cfg, err := Load(newFlags(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.LLM.Model)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.env")))

	var cfgErr *apperr.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "config", cfgErr.Key)
}

func TestRequireMarketKey(t *testing.T) {
	var cfgErr *apperr.ConfigError
	err := Config{}.RequireMarketKey()
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "ALPHA_VANTAGE_API_KEY", cfgErr.Key)

	ok := Config{AlphaVantage: AlphaVantage{APIKey: "k"}}
	assert.NoError(t, ok.RequireMarketKey())
}
