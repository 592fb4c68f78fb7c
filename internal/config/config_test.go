package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	assert.Equal(t, 60*time.Second, cfg.Agent.Timeout())
	assert.Equal(t, time.Second, cfg.Agent.RetryDelay())
	assert.Equal(t, "minerva.db", cfg.Database.Path)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minerva.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
llm:
  provider: openai
  base_url: https://api.openai.com/v1
  model: gpt-4o-mini
agent:
  max_iterations: 8
  enabled_tools: [calculate, current_time]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 8, cfg.Agent.MaxIterations)
	assert.Equal(t, []string{"calculate", "current_time"}, cfg.Agent.EnabledTools)
	// Untouched keys keep their defaults.
	assert.Equal(t, 60000, cfg.Agent.TimeoutMS)
	assert.Equal(t, "minerva.db", cfg.Database.Path)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minerva.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644))

	t.Setenv("MINERVA_ADDR", ":7070")
	t.Setenv("MINERVA_LLM_MODEL", "llama3.1")
	t.Setenv("MINERVA_DB_PATH", "/tmp/minerva-test.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "llama3.1", cfg.LLM.Model)
	assert.Equal(t, "/tmp/minerva-test.db", cfg.Database.Path)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minerva.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadValidatesBounds(t *testing.T) {
	cases := map[string]string{
		"agent:\n  max_iterations: 0\n":  "max_iterations",
		"agent:\n  timeout_ms: -5\n":     "timeout_ms",
		"agent:\n  retry_attempts: -1\n": "retry_attempts",
	}
	for body, wantErr := range cases {
		path := filepath.Join(t.TempDir(), "minerva.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		_, err := Load(path)
		require.Error(t, err, "config %q", body)
		assert.Contains(t, err.Error(), wantErr)
	}
}
