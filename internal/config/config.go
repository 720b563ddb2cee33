// Package config loads the process configuration from environment
// variables (and an optional config file) into an explicit Config value.
// Components receive the Config by argument; nothing reads the environment
// after Load returns.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultLLMModel       = "gemini-2.0-flash-lite"
	DefaultLLMTemperature = 0.05
	DefaultNATSURL        = "nats://localhost:4222"
	DefaultNATSSubject    = "alerts.telemetry"
	DefaultHistoryPath    = "data/alert_history.jsonl"
)

// Config holds every setting the service needs, resolved once at startup.
type Config struct {
	// Vendor credentials. All three are required; Load fails listing every
	// missing one before any network activity starts.
	VirusTotalKey string
	IPInfoKey     string
	GoogleAPIKey  string

	// LLM settings for the agent engine.
	LLMModel       string
	LLMTemperature float64

	// Message bus.
	NATSURL     string
	NATSSubject string

	// Append-only alert log.
	HistoryPath string

	// Dashboard HTTP server.
	DashboardPort int
	CORSOrigins   []string
	RateLimitRPS  int

	// Listener metrics endpoint; 0 disables it.
	MetricsPort int
}

// Load reads configuration from the environment (and sentry.yaml if one is
// present in the working directory or configs/) and validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("sentry")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("llm.model", DefaultLLMModel)
	v.SetDefault("llm.temperature", DefaultLLMTemperature)
	v.SetDefault("nats.url", DefaultNATSURL)
	v.SetDefault("nats.subject", DefaultNATSSubject)
	v.SetDefault("history.path", DefaultHistoryPath)
	v.SetDefault("dashboard.port", 8080)
	v.SetDefault("dashboard.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("dashboard.rate_limit_rps", 20)
	v.SetDefault("listener.metrics_port", 0)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		VirusTotalKey:  v.GetString("virustotal_api_key"),
		IPInfoKey:      v.GetString("ipinfo_api_key"),
		GoogleAPIKey:   v.GetString("google_api_key"),
		LLMModel:       v.GetString("llm.model"),
		LLMTemperature: v.GetFloat64("llm.temperature"),
		NATSURL:        v.GetString("nats.url"),
		NATSSubject:    v.GetString("nats.subject"),
		HistoryPath:    v.GetString("history.path"),
		DashboardPort:  v.GetInt("dashboard.port"),
		CORSOrigins:    v.GetStringSlice("dashboard.cors_origins"),
		RateLimitRPS:   v.GetInt("dashboard.rate_limit_rps"),
		MetricsPort:    v.GetInt("listener.metrics_port"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing required credential in a single error.
func (c *Config) Validate() error {
	var missing []string
	if c.VirusTotalKey == "" {
		missing = append(missing, "VIRUSTOTAL_API_KEY")
	}
	if c.IPInfoKey == "" {
		missing = append(missing, "IPINFO_API_KEY")
	}
	if c.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
