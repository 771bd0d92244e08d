package ai

import (
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/agenda/internal/profile"
)

// Config represents the AI configuration used for event extraction.
type Config struct {
	LLM LLMConfig

	// Timezone is the IANA zone written into every extracted event.
	Timezone string
	// TZOffset is the offset suffix used in prompts and resolved timestamps.
	TZOffset string
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string        // ollama, openai, deepseek
	Model       string        // llama3.1
	APIKey      string
	BaseURL     string
	MaxTokens   int           // default: 1024
	Temperature float32       // default: 0.1
	MaxRetries  int           // default: 3
	Timeout     time.Duration // default: 60s
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Timezone: p.Timezone,
		TZOffset: p.TZOffset,
	}

	cfg.LLM = LLMConfig{
		Provider:    p.LLMProvider,
		Model:       p.LLMModel,
		APIKey:      p.LLMAPIKey,
		MaxTokens:   1024,
		Temperature: 0.1,
		MaxRetries:  3,
		Timeout:     p.LLMTimeout,
	}

	switch p.LLMProvider {
	case "deepseek":
		cfg.LLM.BaseURL = p.DeepSeekURL
	case "openai":
		cfg.LLM.BaseURL = p.OpenAIBaseURL
	case "ollama":
		cfg.LLM.BaseURL = p.OllamaBaseURL
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}

	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}

	if c.LLM.Model == "" {
		return errors.New("LLM model is required")
	}

	if c.Timezone == "" {
		return errors.New("timezone is required")
	}

	return nil
}
