package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LLMConfig selects and configures the text-generation backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "ollama", "openai", "gemini"
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// AgentConfig bounds the orchestration loop and the generation client.
type AgentConfig struct {
	MaxIterations int      `yaml:"max_iterations"`
	TimeoutMS     int      `yaml:"timeout_ms"`
	RetryAttempts int      `yaml:"retry_attempts"`
	RetryDelayMS  int      `yaml:"retry_delay_ms"`
	EnabledTools  []string `yaml:"enabled_tools"` // empty means all registered tools
}

// Timeout returns the loop's wall-clock budget.
func (a AgentConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

// RetryDelay returns the base backoff delay for the generation client.
func (a AgentConfig) RetryDelay() time.Duration {
	return time.Duration(a.RetryDelayMS) * time.Millisecond
}

// ServerConfig configures the HTTP kernel.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig locates the DuckDB file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Agent    AgentConfig    `yaml:"agent"`
	Database DatabaseConfig `yaml:"database"`
}

// Default returns safe defaults: local Ollama, five iterations, one minute.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			BaseURL:     "http://localhost:11434",
			Model:       "qwen2.5:latest",
			Temperature: 0.7,
		},
		Agent: AgentConfig{
			MaxIterations: 5,
			TimeoutMS:     60000,
			RetryAttempts: 3,
			RetryDelayMS:  1000,
		},
		Database: DatabaseConfig{
			Path: "minerva.db",
		},
	}
}

// Load reads configuration: defaults, then the YAML file at path (skipped
// when path is empty or missing), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MINERVA_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MINERVA_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("MINERVA_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("MINERVA_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("MINERVA_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("MINERVA_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
}

func (c Config) validate() error {
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive")
	}
	if c.Agent.TimeoutMS <= 0 {
		return fmt.Errorf("agent.timeout_ms must be positive")
	}
	if c.Agent.RetryAttempts <= 0 {
		return fmt.Errorf("agent.retry_attempts must be positive")
	}
	return nil
}
