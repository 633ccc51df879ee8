// Package config holds application configuration and role instructions.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the research pipeline.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Agents    AgentsConfig    `mapstructure:"agents"`
	Search    SearchConfig    `mapstructure:"search"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Server    ServerConfig    `mapstructure:"server"`
	Prompts   PromptsConfig   `mapstructure:"prompts"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// LLMConfig configures the language-model provider.
type LLMConfig struct {
	Provider string        `mapstructure:"provider"` // openai
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}

// AgentConfig holds per-agent sampling parameters.
type AgentConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// AgentsConfig configures the four role agents and the shared tool loop.
type AgentsConfig struct {
	Coordinator   AgentConfig `mapstructure:"coordinator"`
	Researcher    AgentConfig `mapstructure:"researcher"`
	Synthesizer   AgentConfig `mapstructure:"synthesizer"`
	Critic        AgentConfig `mapstructure:"critic"`
	MaxToolRounds int         `mapstructure:"max_tool_rounds"`
}

func (a AgentsConfig) Validate() error {
	if a.MaxToolRounds <= 0 {
		return fmt.Errorf("agents.max_tool_rounds must be > 0")
	}
	for name, ac := range map[string]AgentConfig{
		"coordinator": a.Coordinator,
		"researcher":  a.Researcher,
		"synthesizer": a.Synthesizer,
		"critic":      a.Critic,
	} {
		if ac.Temperature < 0 || ac.Temperature > 1 {
			return fmt.Errorf("agents.%s.temperature must be in [0,1]", name)
		}
		if ac.MaxTokens <= 0 {
			return fmt.Errorf("agents.%s.max_tokens must be > 0", name)
		}
	}
	return nil
}

// SearchConfig selects and configures the web-search backend.
type SearchConfig struct {
	Provider   string `mapstructure:"provider"` // serper, brave, local
	APIKey     string `mapstructure:"api_key"`
	MaxResults int    `mapstructure:"max_results"`
	IndexPath  string `mapstructure:"index_path"` // local provider only
}

func (s SearchConfig) Validate() error {
	switch s.Provider {
	case "serper", "brave", "local":
	default:
		return fmt.Errorf("search.provider must be serper, brave or local, got %q", s.Provider)
	}
	if s.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be > 0")
	}
	return nil
}

// FetchConfig configures the page-fetch tool.
type FetchConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains telemetry settings.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// PromptsConfig points at the role-instruction file. Empty means the
// embedded defaults.
type PromptsConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_timeout", 5*time.Minute)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.timeout", 120*time.Second)

	v.SetDefault("agents.coordinator.temperature", 1.0)
	v.SetDefault("agents.coordinator.max_tokens", 2048)
	v.SetDefault("agents.researcher.temperature", 1.0)
	v.SetDefault("agents.researcher.max_tokens", 4096)
	v.SetDefault("agents.synthesizer.temperature", 0.7)
	v.SetDefault("agents.synthesizer.max_tokens", 4096)
	v.SetDefault("agents.critic.temperature", 0.3)
	v.SetDefault("agents.critic.max_tokens", 4096)
	v.SetDefault("agents.max_tool_rounds", 8)

	v.SetDefault("search.provider", "serper")
	v.SetDefault("search.max_results", 5)

	v.SetDefault("fetch.enabled", true)
	v.SetDefault("fetch.timeout", 20*time.Second)

	v.SetDefault("telemetry.enabled", true)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.request_timeout", 10*time.Minute)
}

// LoadConfig reads configuration from the given file (optional), the
// environment (DEEPDIVE_* plus the conventional provider key variables), and
// built-in defaults, then validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DEEPDIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("deepdive")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			// Config file is optional; defaults plus env are a full config.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Conventional environment fallbacks for API keys.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Search.APIKey == "" {
		switch cfg.Search.Provider {
		case "serper":
			cfg.Search.APIKey = os.Getenv("SERPER_API_KEY")
		case "brave":
			cfg.Search.APIKey = os.Getenv("BRAVE_API_KEY")
		}
	}

	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Agents.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Search.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
