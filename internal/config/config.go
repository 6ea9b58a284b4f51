package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/PabloGalante/fermi-notifier/internal/domain"
)

type GeneratorBackend string

const (
	GeneratorREST  GeneratorBackend = "rest"
	GeneratorGenAI GeneratorBackend = "genai"
	GeneratorMock  GeneratorBackend = "mock"
)

const defaultPort = 8080

type Config struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	NtfyServer string
	NtfyTopic  string

	Port int

	Generator GeneratorBackend
	Schedule  string // cron spec; empty disables the in-process trigger
	LogLevel  string
}

// keys maps config keys to the environment variables that set them.
var keys = map[string]string{
	"gemini_api_key":  "GEMINI_API_KEY",
	"gemini_model":    "GEMINI_MODEL",
	"gemini_base_url": "GEMINI_BASE_URL",
	"ntfy_server":     "NTFY_SERVER",
	"ntfy_topic":      "NTFY_TOPIC",
	"port":            "PORT",
	"generator":       "FERMI_GENERATOR",
	"schedule":        "FERMI_SCHEDULE",
	"log_level":       "LOG_LEVEL",
}

// Load reads configuration from the environment and, when path is not
// empty, from a config file (yaml, json or toml). Environment wins.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("ntfy_server", "https://ntfy.sh")
	v.SetDefault("port", strconv.Itoa(defaultPort))
	v.SetDefault("generator", string(GeneratorREST))
	v.SetDefault("log_level", "info")

	for key, env := range keys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &domain.ConfigError{Field: "config", Message: err.Error()}
		}
	}

	port, err := parsePort(v.GetString("port"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		GeminiAPIKey:  strings.TrimSpace(v.GetString("gemini_api_key")),
		GeminiModel:   v.GetString("gemini_model"),
		GeminiBaseURL: v.GetString("gemini_base_url"),
		NtfyServer:    v.GetString("ntfy_server"),
		NtfyTopic:     strings.TrimSpace(v.GetString("ntfy_topic")),
		Port:          port,
		Generator:     GeneratorBackend(strings.ToLower(v.GetString("generator"))),
		Schedule:      strings.TrimSpace(v.GetString("schedule")),
		LogLevel:      v.GetString("log_level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required fields are present and values are valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Generator != GeneratorMock && c.GeminiAPIKey == "" {
		errs = append(errs, &domain.ConfigError{Field: "GEMINI_API_KEY", Message: "is required"})
	}
	if c.NtfyTopic == "" {
		errs = append(errs, &domain.ConfigError{Field: "NTFY_TOPIC", Message: "is required"})
	} else if strings.ContainsAny(c.NtfyTopic, "/?# ") {
		errs = append(errs, &domain.ConfigError{Field: "NTFY_TOPIC", Message: "must be a single path segment"})
	}

	switch c.Generator {
	case GeneratorREST, GeneratorGenAI, GeneratorMock:
	default:
		errs = append(errs, &domain.ConfigError{
			Field:   "FERMI_GENERATOR",
			Message: fmt.Sprintf("unknown backend %q (want rest, genai or mock)", c.Generator),
		})
	}

	return errors.Join(errs...)
}

func parsePort(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultPort, nil
	}
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, &domain.ConfigError{Field: "PORT", Message: fmt.Sprintf("must be a number between 1 and 65535, got %q", s)}
	}
	return port, nil
}
