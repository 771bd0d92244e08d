package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the agenda server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where agenda stores resolved events
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the public url of the agenda instance, used in feeds.
	InstanceURL string

	// Calendar defaults
	Timezone string // AGENDA_TIMEZONE (default: America/Sao_Paulo)
	TZOffset string // AGENDA_TZ_OFFSET (default: -03:00)

	// LLM Configuration
	LLMProvider    string        // AGENDA_LLM_PROVIDER (default: ollama)
	LLMModel       string        // AGENDA_LLM_MODEL (default: llama3.1)
	LLMAPIKey      string        // AGENDA_LLM_API_KEY
	OllamaBaseURL  string        // AGENDA_OLLAMA_BASE_URL (default: http://localhost:11434/v1)
	OpenAIBaseURL  string        // AGENDA_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	DeepSeekURL    string        // AGENDA_DEEPSEEK_BASE_URL (default: https://api.deepseek.com)
	LLMTimeout     time.Duration // AGENDA_LLM_TIMEOUT (default: 60s)
	LLMConcurrency int           // AGENDA_LLM_CONCURRENCY (default: 4)

	// CalDAV publishing, disabled when CalDAVURL is empty.
	CalDAVURL      string // AGENDA_CALDAV_URL
	CalDAVUser     string // AGENDA_CALDAV_USER
	CalDAVPassword string // AGENDA_CALDAV_PASSWORD
	CalDAVPath     string // AGENDA_CALDAV_CALENDAR (calendar collection path)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsCalDAVEnabled reports whether resolved events should be published.
func (p *Profile) IsCalDAVEnabled() bool {
	return p.CalDAVURL != "" && p.CalDAVPath != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from AGENDA_* environment variables.
// Fields already set (e.g. by flags) keep their value when the variable is unset.
func (p *Profile) FromEnv() {
	keep := func(current, key, defaultValue string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		if current != "" {
			return current
		}
		return defaultValue
	}

	p.Timezone = keep(p.Timezone, "AGENDA_TIMEZONE", "America/Sao_Paulo")
	p.TZOffset = keep(p.TZOffset, "AGENDA_TZ_OFFSET", "-03:00")

	p.LLMProvider = keep(p.LLMProvider, "AGENDA_LLM_PROVIDER", "ollama")
	p.LLMModel = keep(p.LLMModel, "AGENDA_LLM_MODEL", "llama3.1")
	p.LLMAPIKey = keep(p.LLMAPIKey, "AGENDA_LLM_API_KEY", "")
	p.OllamaBaseURL = getEnvOrDefault("AGENDA_OLLAMA_BASE_URL", "http://localhost:11434/v1")
	p.OpenAIBaseURL = getEnvOrDefault("AGENDA_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.DeepSeekURL = getEnvOrDefault("AGENDA_DEEPSEEK_BASE_URL", "https://api.deepseek.com")

	p.LLMTimeout = 60 * time.Second
	if v := os.Getenv("AGENDA_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			p.LLMTimeout = d
		} else {
			slog.Warn("ignoring invalid AGENDA_LLM_TIMEOUT", slog.String("value", v))
		}
	}
	p.LLMConcurrency = 4
	if v := os.Getenv("AGENDA_LLM_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.LLMConcurrency = n
		} else {
			slog.Warn("ignoring invalid AGENDA_LLM_CONCURRENCY", slog.String("value", v))
		}
	}

	p.CalDAVURL = os.Getenv("AGENDA_CALDAV_URL")
	p.CalDAVUser = os.Getenv("AGENDA_CALDAV_USER")
	p.CalDAVPassword = os.Getenv("AGENDA_CALDAV_PASSWORD")
	p.CalDAVPath = os.Getenv("AGENDA_CALDAV_CALENDAR")
}

// Location loads the configured IANA timezone.
func (p *Profile) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", p.Timezone)
	}
	return loc, nil
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q", p.Driver)
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "agenda")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/agenda"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("agenda_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	if _, err := p.Location(); err != nil {
		return err
	}

	return nil
}
