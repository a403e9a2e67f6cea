package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "NEWS_CLASSIFIER_CONFIG"
	databaseURLEnv    = "DATABASE_URL"
	databaseDriverEnv = "DATABASE_DRIVER"
	chutesAPIKeyEnv   = "CHUTES_API_KEY"
	chutesModelEnv    = "CHUTES_MODEL"
	chutesEndpointEnv = "CHUTES_ENDPOINT"
	logLevelEnv       = "LOG_LEVEL"
	logFormatEnv      = "LOG_FORMAT"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	pushgatewayURLEnv = "PUSHGATEWAY_URL"
)

const defaultRequestTimeout = 3 * time.Minute

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var (
	ErrMissingAPIKey     = errors.New("config: CHUTES_API_KEY is not set")
	ErrMissingDSN        = errors.New("config: DATABASE_URL is not set")
	ErrUnsupportedDriver = errors.New("config: unsupported database driver")
)

// Config holds every setting the classifier needs; it is built once at startup.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Chutes        ChutesConfig       `yaml:"chutes"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig describes the article store connection.
type DatabaseConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver"`
	Table  string `yaml:"table"`
}

// ResolvedDriver returns the configured driver, inferring it from the DSN when empty.
func (d DatabaseConfig) ResolvedDriver() string {
	if d.Driver != "" {
		return strings.ToLower(d.Driver)
	}
	dsn := strings.ToLower(d.DSN)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(dsn, "sqlite:"), strings.HasPrefix(dsn, "file:"),
		strings.HasSuffix(dsn, ".db"), dsn == ":memory:":
		return DriverSQLite
	default:
		return DriverPostgres
	}
}

// ChutesConfig defines how to contact the OpenAI-compatible chat endpoint.
type ChutesConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	MaxTokens   int64         `yaml:"maxTokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PipelineConfig bounds a single run.
type PipelineConfig struct {
	Limit int `yaml:"limit"`
}

// SchedulerConfig enables watch mode when Interval is positive.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both the token and the chat are known.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// MetricsConfig points at an optional Prometheus Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgatewayUrl"`
	Job            string `yaml:"job"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// An empty path falls back to NEWS_CLASSIFIER_CONFIG.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Chutes.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return ErrMissingDSN
	}
	switch driver := c.Database.ResolvedDriver(); driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseURLEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}

	if v := os.Getenv(chutesAPIKeyEnv); v != "" {
		c.Chutes.APIKey = v
	}
	if v := os.Getenv(chutesModelEnv); v != "" {
		c.Chutes.Model = v
	}
	if v := os.Getenv(chutesEndpointEnv); v != "" {
		c.Chutes.Endpoint = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(pushgatewayURLEnv); v != "" {
		c.Metrics.PushgatewayURL = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.Table != "" {
		base.Database.Table = override.Database.Table
	}

	if override.Chutes.Endpoint != "" {
		base.Chutes.Endpoint = override.Chutes.Endpoint
	}
	if override.Chutes.Model != "" {
		base.Chutes.Model = override.Chutes.Model
	}
	if override.Chutes.APIKey != "" {
		base.Chutes.APIKey = override.Chutes.APIKey
	}
	if override.Chutes.MaxTokens > 0 {
		base.Chutes.MaxTokens = override.Chutes.MaxTokens
	}
	if override.Chutes.Timeout != 0 {
		base.Chutes.Timeout = override.Chutes.Timeout
	}

	if override.Pipeline.Limit > 0 {
		base.Pipeline.Limit = override.Pipeline.Limit
	}
	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Metrics.PushgatewayURL != "" {
		base.Metrics.PushgatewayURL = override.Metrics.PushgatewayURL
	}
	if override.Metrics.Job != "" {
		base.Metrics.Job = override.Metrics.Job
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

// fileTemperature reports the temperature only when the file sets it, so 0 is honoured.
func fileTemperature(raw []byte) *float64 {
	var doc struct {
		Chutes struct {
			Temperature *float64 `yaml:"temperature"`
		} `yaml:"chutes"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc.Chutes.Temperature
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Table: "articles"},
		Chutes: ChutesConfig{
			Endpoint:    "https://llm.chutes.ai/v1/",
			Model:       "deepseek-ai/DeepSeek-R1",
			MaxTokens:   2048,
			Temperature: 0.5,
			Timeout:     defaultRequestTimeout,
		},
		Metrics: MetricsConfig{Job: "news_classifier"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
