package ai

import (
	"testing"
	"time"

	"github.com/hrygo/agenda/internal/profile"
)

// TestNewConfigFromProfile_Ollama tests the default local provider.
func TestNewConfigFromProfile_Ollama(t *testing.T) {
	prof := &profile.Profile{
		Timezone:      "America/Sao_Paulo",
		TZOffset:      "-03:00",
		LLMProvider:   "ollama",
		LLMModel:      "llama3.1",
		OllamaBaseURL: "http://localhost:11434/v1",
		OpenAIBaseURL: "https://api.openai.com/v1",
		LLMTimeout:    60 * time.Second,
	}

	cfg := NewConfigFromProfile(prof)

	if cfg.LLM.Provider != "ollama" {
		t.Errorf("Expected LLM.Provider=ollama, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("Expected LLM.BaseURL=http://localhost:11434/v1, got %s", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Temperature != 0.1 {
		t.Errorf("Expected LLM.Temperature=0.1, got %f", cfg.LLM.Temperature)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("Expected LLM.Timeout=60s, got %s", cfg.LLM.Timeout)
	}
	if cfg.Timezone != "America/Sao_Paulo" || cfg.TZOffset != "-03:00" {
		t.Errorf("Unexpected timezone %s %s", cfg.Timezone, cfg.TZOffset)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

// TestNewConfigFromProfile_DeepSeek tests provider-specific base URLs.
func TestNewConfigFromProfile_DeepSeek(t *testing.T) {
	prof := &profile.Profile{
		Timezone:    "America/Sao_Paulo",
		LLMProvider: "deepseek",
		LLMModel:    "deepseek-chat",
		LLMAPIKey:   "deepseek-key",
		DeepSeekURL: "https://api.deepseek.com",
	}

	cfg := NewConfigFromProfile(prof)

	if cfg.LLM.BaseURL != "https://api.deepseek.com" {
		t.Errorf("Expected LLM.BaseURL=https://api.deepseek.com, got %s", cfg.LLM.BaseURL)
	}
	if cfg.LLM.APIKey != "deepseek-key" {
		t.Errorf("Expected LLM.APIKey=deepseek-key, got %s", cfg.LLM.APIKey)
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
	}{
		{
			name:        "missing provider",
			cfg:         &Config{Timezone: "UTC", LLM: LLMConfig{Model: "m"}},
			expectError: true,
		},
		{
			name:        "openai without key",
			cfg:         &Config{Timezone: "UTC", LLM: LLMConfig{Provider: "openai", Model: "gpt-4o-mini"}},
			expectError: true,
		},
		{
			name:        "ollama without key",
			cfg:         &Config{Timezone: "UTC", LLM: LLMConfig{Provider: "ollama", Model: "llama3.1"}},
			expectError: false,
		},
		{
			name:        "missing model",
			cfg:         &Config{Timezone: "UTC", LLM: LLMConfig{Provider: "ollama"}},
			expectError: true,
		},
		{
			name:        "missing timezone",
			cfg:         &Config{LLM: LLMConfig{Provider: "ollama", Model: "llama3.1"}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}
