/*
Package config loads runtime settings for the worklog binaries.

SOURCES (later wins):
  1. Defaults()
  2. YAML file (optional, --config / WORKLOG_CONFIG)
  3. .env file loaded into the process environment
  4. WORKLOG_* environment variables

Validate() reports every problem at once; Resolve() converts the raw
strings into engine values.

EXAMPLE (worklog.yaml):
  server:
    port: "8080"
  storage:
    backend: sqlite
    path: ./data/worklog.db
  periods:
    policy: cycle_27_26
    count: 12
  payroll:
    day_rate: "150"
    currency: "S/."
*/
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/worklog-engine/engine"
	"github.com/warp/worklog-engine/timesheet"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Periods   PeriodsConfig   `yaml:"periods"`
	Locations LocationsConfig `yaml:"locations"`
	Payroll   PayrollConfig   `yaml:"payroll"`
	Timezone  string          `yaml:"timezone"`
	Log       LogConfig       `yaml:"log"`
	AMQP      AMQPConfig      `yaml:"amqp"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// StorageConfig selects the repository. Path is a database file for sqlite
// and a directory for file; empty means the backend default.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
}

type PeriodsConfig struct {
	Policy      string `yaml:"policy"`
	Count       int    `yaml:"count"`
	Order       string `yaml:"order"`
	LabelLayout string `yaml:"label_layout"`
}

type LocationsConfig struct {
	Vocabulary string `yaml:"vocabulary"`
}

// PayrollConfig keeps the day rate as a string so YAML floats never round it.
type PayrollConfig struct {
	DayRate     string `yaml:"day_rate"`
	HoursPerDay int    `yaml:"hours_per_day"`
	Currency    string `yaml:"currency"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}

// AMQPConfig enables event publishing when URL is set.
type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var validBackends = []string{BackendMemory, BackendFile, BackendSQLite}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:  ServerConfig{Port: "8080"},
		Storage: StorageConfig{Backend: BackendSQLite, Key: timesheet.DefaultStorageKey},
		Periods: PeriodsConfig{
			Policy:      string(engine.DefaultPolicy),
			Count:       12,
			Order:       string(engine.NewestFirst),
			LabelLayout: engine.DefaultLabelLayout,
		},
		Locations: LocationsConfig{Vocabulary: engine.VocabularySpanish.Name},
		Payroll:   PayrollConfig{DayRate: "150", HoursPerDay: 8, Currency: "S/."},
		Timezone:  "Local",
		Log:       LogConfig{Level: "info", Format: "console"},
		AMQP:      AMQPConfig{Exchange: "worklog", Queue: "worklog.events"},
		Scheduler: SchedulerConfig{Interval: time.Hour},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load builds the configuration from defaults, the optional YAML file at path
// and the environment. It does not validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadDotEnv loads each existing file into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("WORKLOG_PORT", c.Server.Port)

	c.Storage.Backend = getEnv("WORKLOG_STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.Path = getEnv("WORKLOG_STORAGE_PATH", c.Storage.Path)
	c.Storage.Key = getEnv("WORKLOG_STORAGE_KEY", c.Storage.Key)

	c.Periods.Policy = getEnv("WORKLOG_PERIOD_POLICY", c.Periods.Policy)
	c.Periods.Count = getEnvInt("WORKLOG_PERIOD_COUNT", c.Periods.Count)
	c.Periods.Order = getEnv("WORKLOG_PERIOD_ORDER", c.Periods.Order)
	c.Periods.LabelLayout = getEnv("WORKLOG_LABEL_LAYOUT", c.Periods.LabelLayout)

	c.Locations.Vocabulary = getEnv("WORKLOG_VOCABULARY", c.Locations.Vocabulary)

	c.Payroll.DayRate = getEnv("WORKLOG_DAY_RATE", c.Payroll.DayRate)
	c.Payroll.HoursPerDay = getEnvInt("WORKLOG_HOURS_PER_DAY", c.Payroll.HoursPerDay)
	c.Payroll.Currency = getEnv("WORKLOG_CURRENCY", c.Payroll.Currency)

	c.Timezone = getEnv("WORKLOG_TIMEZONE", c.Timezone)

	c.Log.Level = getEnv("WORKLOG_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("WORKLOG_LOG_FORMAT", c.Log.Format)

	c.AMQP.URL = getEnv("WORKLOG_AMQP_URL", c.AMQP.URL)
	c.AMQP.Exchange = getEnv("WORKLOG_AMQP_EXCHANGE", c.AMQP.Exchange)
	c.AMQP.Queue = getEnv("WORKLOG_AMQP_QUEUE", c.AMQP.Queue)

	c.Scheduler.Interval = getEnvDuration("WORKLOG_SCHEDULER_INTERVAL", c.Scheduler.Interval)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate validates the configuration and returns an error listing every
// problem found.
func (c Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Server.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Server.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	isValidBackend := false
	for _, b := range validBackends {
		if c.Storage.Backend == b {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.Storage.Backend, validBackends))
	}
	if c.Storage.Key == "" {
		errs = append(errs, "storage key cannot be empty")
	}

	if _, err := engine.ParsePeriodPolicy(c.Periods.Policy); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Periods.Count < 1 || c.Periods.Count > engine.MaxPeriodCount {
		errs = append(errs, fmt.Sprintf("invalid period count %d: must be between 1 and %d", c.Periods.Count, engine.MaxPeriodCount))
	}
	if _, err := engine.ParseOrder(c.Periods.Order); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := engine.LookupVocabulary(c.Locations.Vocabulary); err != nil {
		errs = append(errs, err.Error())
	}

	if rate, err := decimal.NewFromString(c.Payroll.DayRate); err != nil {
		errs = append(errs, fmt.Sprintf("invalid day rate '%s': must be a decimal number", c.Payroll.DayRate))
	} else if !rate.IsPositive() {
		errs = append(errs, fmt.Sprintf("invalid day rate %s: must be positive", rate))
	}
	if c.Payroll.HoursPerDay < 1 || c.Payroll.HoursPerDay > 24 {
		errs = append(errs, fmt.Sprintf("invalid hours per day %d: must be between 1 and 24", c.Payroll.HoursPerDay))
	}

	if _, err := c.location(); err != nil {
		errs = append(errs, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level '%s'", c.Log.Level))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be console or json", c.Log.Format))
	}

	if c.AMQP.URL != "" {
		if parsedURL, err := url.Parse(c.AMQP.URL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQP.URL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQP.Exchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQP.Queue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.Scheduler.Interval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid scheduler interval %v: must be at least 1 second", c.Scheduler.Interval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Resolved holds the engine-facing values of a valid Config.
type Resolved struct {
	Periods    engine.PeriodConfig
	Order      engine.Order
	Count      int
	Vocabulary engine.Vocabulary
	Rates      engine.RateTable
	Currency   string
	Location   *time.Location
}

// Resolve converts the configuration into engine values.
func (c Config) Resolve() (Resolved, error) {
	policy, err := engine.ParsePeriodPolicy(c.Periods.Policy)
	if err != nil {
		return Resolved{}, err
	}
	order, err := engine.ParseOrder(c.Periods.Order)
	if err != nil {
		return Resolved{}, err
	}
	vocab, err := engine.LookupVocabulary(c.Locations.Vocabulary)
	if err != nil {
		return Resolved{}, err
	}
	rate, err := decimal.NewFromString(c.Payroll.DayRate)
	if err != nil {
		return Resolved{}, fmt.Errorf("day rate: %w", err)
	}
	loc, err := c.location()
	if err != nil {
		return Resolved{}, fmt.Errorf("timezone: %w", err)
	}
	return Resolved{
		Periods:    engine.PeriodConfig{Policy: policy, LabelLayout: c.Periods.LabelLayout},
		Order:      order,
		Count:      c.Periods.Count,
		Vocabulary: vocab,
		Rates:      engine.RateTable{DayRate: rate, HoursPerDay: c.Payroll.HoursPerDay},
		Currency:   c.Payroll.Currency,
		Location:   loc,
	}, nil
}

func (c Config) location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// StoragePath returns the configured path or the backend default.
func (s StorageConfig) StoragePath() string {
	if s.Path != "" {
		return s.Path
	}
	if s.Backend == BackendFile {
		return "./data"
	}
	return "./data/worklog.db"
}
