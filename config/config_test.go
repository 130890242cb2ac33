package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worklog-engine/engine"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())

	r, err := cfg.Resolve()
	require.NoError(t, err)
	assert.Equal(t, engine.PolicyCycle2726, r.Periods.Policy)
	assert.Equal(t, engine.NewestFirst, r.Order)
	assert.Equal(t, 12, r.Count)
	assert.Equal(t, engine.VocabularySpanish, r.Vocabulary)
	assert.Equal(t, "150", r.Rates.DayRate.String())
	assert.Equal(t, 480, r.Rates.MinutesPerDay())
	assert.Equal(t, "S/.", r.Currency)
	assert.Equal(t, time.Local, r.Location)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "worklog.yaml", `
server:
  port: "9090"
storage:
  backend: file
periods:
  policy: calendar_half
  count: 6
locations:
  vocabulary: en
payroll:
  day_rate: "200.50"
timezone: America/Lima
scheduler:
  interval: 30s
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "./data", cfg.Storage.StoragePath())
	assert.Equal(t, "howo-entries", cfg.Storage.Key, "unset keys keep defaults")
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval)

	r, err := cfg.Resolve()
	require.NoError(t, err)
	assert.Equal(t, engine.PolicyCalendarHalf, r.Periods.Policy)
	assert.Equal(t, 6, r.Count)
	assert.Equal(t, "Office", r.Vocabulary.Label(engine.LocationOnSite))
	assert.Equal(t, "200.5", r.Rates.DayRate.String())
	assert.Equal(t, "America/Lima", r.Location.String())
}

func TestLoad_EnvironmentWins(t *testing.T) {
	path := writeFile(t, "worklog.yaml", "server:\n  port: \"9090\"\n")
	t.Setenv("WORKLOG_PORT", "7070")
	t.Setenv("WORKLOG_PERIOD_COUNT", "3")
	t.Setenv("WORKLOG_SCHEDULER_INTERVAL", "5m")
	t.Setenv("WORKLOG_PERIOD_POLICY", "calendar_half")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Periods.Count)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, "calendar_half", cfg.Periods.Policy)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "server: [unclosed"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "WORKLOG_CURRENCY=USD\n")
	t.Setenv("WORKLOG_CURRENCY", "")
	os.Unsetenv("WORKLOG_CURRENCY")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env")))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Payroll.Currency)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{"non-numeric port", func(c *Config) { c.Server.Port = "abc" }, "invalid port 'abc': must be a number"},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }, "invalid port 70000: must be between 1 and 65535"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "invalid storage backend 'redis'"},
		{"empty key", func(c *Config) { c.Storage.Key = "" }, "storage key cannot be empty"},
		{"unknown policy", func(c *Config) { c.Periods.Policy = "weekly" }, "unknown period policy"},
		{"zero count", func(c *Config) { c.Periods.Count = 0 }, "invalid period count 0"},
		{"unknown order", func(c *Config) { c.Periods.Order = "random" }, "unknown period order"},
		{"unknown vocabulary", func(c *Config) { c.Locations.Vocabulary = "fr" }, "unknown location vocabulary"},
		{"bad rate", func(c *Config) { c.Payroll.DayRate = "lots" }, "invalid day rate 'lots'"},
		{"negative rate", func(c *Config) { c.Payroll.DayRate = "-1" }, "must be positive"},
		{"bad hours", func(c *Config) { c.Payroll.HoursPerDay = 0 }, "invalid hours per day 0"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "invalid timezone 'Mars/Olympus'"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level 'loud'"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format 'xml'"},
		{"bad amqp scheme", withAMQP("http://localhost", "x", "q"), "invalid AMQP URL scheme 'http'"},
		{"amqp without queue", withAMQP("amqp://localhost", "x", ""), "AMQP queue name cannot be empty"},
		{"amqp without exchange", withAMQP("amqp://localhost", "", "q"), "AMQP exchange name cannot be empty"},
		{"short interval", func(c *Config) { c.Scheduler.Interval = time.Millisecond }, "invalid scheduler interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func withAMQP(url, exchange, queue string) func(*Config) {
	return func(c *Config) {
		c.AMQP = AMQPConfig{URL: url, Exchange: exchange, Queue: queue}
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = "abc"
	cfg.Periods.Count = -1

	err := cfg.Validate()

	require.Error(t, err)
	assert.Equal(t, 2, strings.Count(err.Error(), "\n- "))
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("k", "v").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = LogConfig{Level: "loud"}.NewLogger(&buf)
	assert.Error(t, err)
}
