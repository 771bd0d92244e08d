package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProfileDefaults checks the defaults applied when no AGENDA_* variable is set.
func TestProfileDefaults(t *testing.T) {
	clearAgendaEnvVars(t)

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"Timezone default", "America/Sao_Paulo", profile.Timezone},
		{"TZOffset default", "-03:00", profile.TZOffset},
		{"LLMProvider default", "ollama", profile.LLMProvider},
		{"LLMModel default", "llama3.1", profile.LLMModel},
		{"OllamaBaseURL default", "http://localhost:11434/v1", profile.OllamaBaseURL},
		{"OpenAIBaseURL default", "https://api.openai.com/v1", profile.OpenAIBaseURL},
		{"DeepSeekURL default", "https://api.deepseek.com", profile.DeepSeekURL},
		{"CalDAVURL default", "", profile.CalDAVURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}

	assert.Equal(t, 60*time.Second, profile.LLMTimeout)
	assert.Equal(t, 4, profile.LLMConcurrency)
	assert.False(t, profile.IsCalDAVEnabled())
}

// TestProfileFromEnv checks that each AGENDA_* variable reaches its field.
func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		field    func(*Profile) string
		expected string
	}{
		{"timezone", "AGENDA_TIMEZONE", "America/Manaus", func(p *Profile) string { return p.Timezone }, "America/Manaus"},
		{"offset", "AGENDA_TZ_OFFSET", "-04:00", func(p *Profile) string { return p.TZOffset }, "-04:00"},
		{"provider", "AGENDA_LLM_PROVIDER", "deepseek", func(p *Profile) string { return p.LLMProvider }, "deepseek"},
		{"model", "AGENDA_LLM_MODEL", "gpt-4o-mini", func(p *Profile) string { return p.LLMModel }, "gpt-4o-mini"},
		{"api key", "AGENDA_LLM_API_KEY", "sk-test", func(p *Profile) string { return p.LLMAPIKey }, "sk-test"},
		{"ollama url", "AGENDA_OLLAMA_BASE_URL", "http://gpu:11434/v1", func(p *Profile) string { return p.OllamaBaseURL }, "http://gpu:11434/v1"},
		{"caldav url", "AGENDA_CALDAV_URL", "https://dav.example.com", func(p *Profile) string { return p.CalDAVURL }, "https://dav.example.com"},
		{"caldav calendar", "AGENDA_CALDAV_CALENDAR", "/cal/agenda/", func(p *Profile) string { return p.CalDAVPath }, "/cal/agenda/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAgendaEnvVars(t)
			t.Setenv(tt.envVar, tt.envValue)

			profile := &Profile{}
			profile.FromEnv()

			actual := tt.field(profile)
			if actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, actual)
			}
		})
	}
}

func TestProfileFromEnv_KeepsFlagValues(t *testing.T) {
	clearAgendaEnvVars(t)

	profile := &Profile{LLMProvider: "openai", Timezone: "UTC"}
	profile.FromEnv()
	assert.Equal(t, "openai", profile.LLMProvider)
	assert.Equal(t, "UTC", profile.Timezone)

	t.Setenv("AGENDA_LLM_PROVIDER", "deepseek")
	profile.FromEnv()
	assert.Equal(t, "deepseek", profile.LLMProvider)
}

func TestProfileFromEnv_Durations(t *testing.T) {
	clearAgendaEnvVars(t)
	t.Setenv("AGENDA_LLM_TIMEOUT", "15s")
	t.Setenv("AGENDA_LLM_CONCURRENCY", "9")

	profile := &Profile{}
	profile.FromEnv()
	assert.Equal(t, 15*time.Second, profile.LLMTimeout)
	assert.Equal(t, 9, profile.LLMConcurrency)

	t.Setenv("AGENDA_LLM_TIMEOUT", "soon")
	t.Setenv("AGENDA_LLM_CONCURRENCY", "-1")
	profile.FromEnv()
	assert.Equal(t, 60*time.Second, profile.LLMTimeout)
	assert.Equal(t, 4, profile.LLMConcurrency)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	profile := &Profile{Mode: "bogus", Data: dir, Timezone: "America/Sao_Paulo"}
	require.NoError(t, profile.Validate())
	assert.Equal(t, "demo", profile.Mode)
	assert.Equal(t, "sqlite", profile.Driver)
	assert.Equal(t, filepath.Join(dir, "agenda_demo.db"), profile.DSN)
}

func TestValidate_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		profile *Profile
	}{
		{"missing data dir", &Profile{Mode: "dev", Data: filepath.Join(dir, "missing"), Timezone: "UTC"}},
		{"unknown driver", &Profile{Mode: "dev", Data: dir, Driver: "mysql", Timezone: "UTC"}},
		{"postgres without dsn", &Profile{Mode: "dev", Data: dir, Driver: "postgres", Timezone: "UTC"}},
		{"bad timezone", &Profile{Mode: "dev", Data: dir, Timezone: "America/Atlantis"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.profile.Validate())
		})
	}
}

func TestIsCalDAVEnabled(t *testing.T) {
	assert.False(t, (&Profile{CalDAVURL: "https://dav.example.com"}).IsCalDAVEnabled())
	assert.True(t, (&Profile{CalDAVURL: "https://dav.example.com", CalDAVPath: "/cal/"}).IsCalDAVEnabled())
}

// Helper functions

func clearAgendaEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"AGENDA_TIMEZONE",
		"AGENDA_TZ_OFFSET",
		"AGENDA_LLM_PROVIDER",
		"AGENDA_LLM_MODEL",
		"AGENDA_LLM_API_KEY",
		"AGENDA_OLLAMA_BASE_URL",
		"AGENDA_OPENAI_BASE_URL",
		"AGENDA_DEEPSEEK_BASE_URL",
		"AGENDA_LLM_TIMEOUT",
		"AGENDA_LLM_CONCURRENCY",
		"AGENDA_CALDAV_URL",
		"AGENDA_CALDAV_USER",
		"AGENDA_CALDAV_PASSWORD",
		"AGENDA_CALDAV_CALENDAR",
	}
	for _, envVar := range envVars {
		// Setenv registers the restore, Unsetenv clears it for this test.
		t.Setenv(envVar, "")
		os.Unsetenv(envVar)
	}
}
