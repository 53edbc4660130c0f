package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     int
	DBPath   string
	LogLevel string
	// Optional bearer token; empty disables auth
	APIKey string
	// Model catalog
	CatalogPath string
	// Moderator
	ModeratorModel string
	DefaultBudget  float64
	// Agent turns
	AgentTemperature float64
	AgentMaxTokens   int
	CallTimeoutSecs  int
	// Provider credentials; a missing key disables the provider
	OpenAIKey        string
	OpenAIBaseURL    string
	AnthropicKey     string
	AnthropicBaseURL string
	MistralKey       string
	MistralBaseURL   string
	GeminiKey        string
	GeminiBaseURL    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:             envInt("PORT", 8200),
		DBPath:           envStr("ANJOMAN_DB_PATH", "/data/anjoman.db"),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		APIKey:           envStr("API_KEY", ""),
		CatalogPath:      envStr("MODEL_CATALOG_PATH", ""),
		ModeratorModel:   envStr("MODERATOR_MODEL", "gpt-4o"),
		DefaultBudget:    envFloat("DEFAULT_BUDGET", 1.0),
		AgentTemperature: envFloat("AGENT_TEMPERATURE", 0.7),
		AgentMaxTokens:   envInt("AGENT_MAX_TOKENS", 500),
		CallTimeoutSecs:  envInt("LLM_CALL_TIMEOUT_SECS", 120),
		OpenAIKey:        envStr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    envStr("OPENAI_BASE_URL", ""),
		AnthropicKey:     envStr("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL: envStr("ANTHROPIC_BASE_URL", ""),
		MistralKey:       envStr("MISTRAL_API_KEY", ""),
		MistralBaseURL:   envStr("MISTRAL_BASE_URL", ""),
		GeminiKey:        envStr("GEMINI_API_KEY", ""),
		GeminiBaseURL:    envStr("GEMINI_BASE_URL", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("ANJOMAN_DB_PATH must not be empty")
	}
	if c.ModeratorModel == "" {
		return fmt.Errorf("MODERATOR_MODEL must not be empty")
	}
	if c.DefaultBudget <= 0 {
		return fmt.Errorf("DEFAULT_BUDGET must be positive, got %f", c.DefaultBudget)
	}
	if c.AgentTemperature < 0 || c.AgentTemperature > 2 {
		return fmt.Errorf("AGENT_TEMPERATURE must be between 0 and 2, got %f", c.AgentTemperature)
	}
	if c.AgentMaxTokens < 1 {
		return fmt.Errorf("AGENT_MAX_TOKENS must be positive, got %d", c.AgentMaxTokens)
	}
	if c.CallTimeoutSecs < 1 {
		return fmt.Errorf("LLM_CALL_TIMEOUT_SECS must be positive, got %d", c.CallTimeoutSecs)
	}
	return nil
}

// CallTimeout returns the per-call LLM timeout as a duration.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSecs) * time.Second
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
