// Package config loads runtime settings from an optional YAML file and
// environment overrides.
//
// Precedence is defaults, then the file named by TRAVEL_CONFIG (or passed to
// Load), then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/namancryu/TravelPMS/logging"
	"github.com/namancryu/TravelPMS/provider"
)

// Environment variables read by Load.
const (
	EnvConfigFile      = "TRAVEL_CONFIG"
	EnvHTTPAddr        = "TRAVEL_HTTP_ADDR"
	EnvTurnTimeout     = "TRAVEL_TURN_TIMEOUT"
	EnvCredentialsFile = "TRAVEL_CREDENTIALS_FILE"
	EnvLogLevel        = "TRAVEL_LOG_LEVEL"
	EnvLogFormat       = "TRAVEL_LOG_FORMAT"
	EnvOTLPEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config is the complete runtime configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Engine    EngineConfig    `yaml:"engine"`
	Budget    BudgetConfig    `yaml:"budget"`
	Currency  CurrencyConfig  `yaml:"currency"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	// CredentialsFile is an optional YAML map of API keys, watched for
	// changes. Environment variables are consulted after it.
	CredentialsFile string `yaml:"credentials_file"`
	// CatalogFile replaces the embedded destination catalog when set.
	CatalogFile string `yaml:"catalog_file"`
	// Providers replaces the built-in provider chain when non-empty.
	Providers []provider.Config `yaml:"providers"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// EngineConfig configures turn processing.
type EngineConfig struct {
	TurnTimeout  time.Duration `yaml:"turn_timeout"`
	HistoryLimit int           `yaml:"history_limit"`

	// MaxProviderAttempts caps provider calls per turn. Zero is unlimited.
	MaxProviderAttempts int `yaml:"max_provider_attempts"`
}

// BudgetConfig configures budget extraction and the cost ceiling.
type BudgetConfig struct {
	// Unit multiplies budgets stated without "만원", e.g. "총 800".
	Unit        int64   `yaml:"unit"`
	SafetyRatio float64 `yaml:"safety_ratio"`
}

// CurrencyConfig configures foreign-currency cost correction.
type CurrencyConfig struct {
	Home      string             `yaml:"home"`
	Threshold int64              `yaml:"threshold"`
	Rates     map[string]float64 `yaml:"rates"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig configures OpenTelemetry export. An empty endpoint keeps
// telemetry in-process.
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Engine: EngineConfig{TurnTimeout: 25 * time.Second},
		Budget: BudgetConfig{Unit: 10000, SafetyRatio: 0.9},
		Currency: CurrencyConfig{
			Home:      "KRW",
			Threshold: 100000,
			Rates: map[string]float64{
				"EUR": 1450,
				"USD": 1350,
				"GBP": 1700,
				"AUD": 900,
				"CNY": 190,
				"TRY": 45,
			},
		},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Telemetry: TelemetryConfig{ServiceName: "travelpms"},
		Providers: provider.DefaultConfigs(),
	}
}

// FromEnv loads the file named by TRAVEL_CONFIG, if any.
func FromEnv() (Config, error) {
	return Load(getEnv(EnvConfigFile, ""))
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTP.Addr = getEnv(EnvHTTPAddr, c.HTTP.Addr)
	c.Engine.TurnTimeout = getDuration(EnvTurnTimeout, c.Engine.TurnTimeout)
	c.CredentialsFile = getEnv(EnvCredentialsFile, c.CredentialsFile)
	c.Logging.Level = getEnv(EnvLogLevel, c.Logging.Level)
	c.Logging.Format = getEnv(EnvLogFormat, c.Logging.Format)
	c.Telemetry.Endpoint = getEnv(EnvOTLPEndpoint, c.Telemetry.Endpoint)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Engine.TurnTimeout < 0 {
		errs = append(errs, errors.New("engine.turn_timeout must not be negative"))
	}
	if c.Engine.MaxProviderAttempts < 0 {
		errs = append(errs, errors.New("engine.max_provider_attempts must not be negative"))
	}
	if c.Budget.Unit <= 0 {
		errs = append(errs, errors.New("budget.unit must be positive"))
	}
	if c.Budget.SafetyRatio <= 0 || c.Budget.SafetyRatio > 1 {
		errs = append(errs, fmt.Errorf("budget.safety_ratio must be in (0,1], got %v", c.Budget.SafetyRatio))
	}
	if strings.TrimSpace(c.Currency.Home) == "" {
		errs = append(errs, errors.New("currency.home is required"))
	}
	for code, rate := range c.Currency.Rates {
		if rate <= 0 {
			errs = append(errs, fmt.Errorf("currency.rates.%s must be positive", code))
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not text or json", c.Logging.Format))
	}
	seen := map[string]bool{}
	for _, p := range c.Providers {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("provider %s: duplicate name", p.Name))
		}
		seen[p.Name] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// LoggerConfig converts the logging section for logging.NewLogger.
func (c Config) LoggerConfig(component string) *logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = logging.ParseLevel(c.Logging.Level)
	if c.Logging.Format != "" {
		cfg.Format = strings.ToLower(c.Logging.Format)
	}
	cfg.Component = component
	return cfg
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
