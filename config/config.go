// Package config loads the tracker's settings from the environment, after
// reading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	App           AppConfig
	Storage       StorageConfig
	Redis         RedisConfig
	HTTP          HTTPConfig
	Telegram      TelegramConfig
	Report        ReportConfig
	Scheduler     SchedulerConfig
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Timezone decides which civil day "today" is (default: Asia/Riyadh).
	Timezone string
	Location *time.Location

	ShutdownTimeout time.Duration
}

// StorageConfig holds the local slot storage settings.
type StorageConfig struct {
	// Path of the sqlite file.
	Path string

	// InMemory skips sqlite; nothing survives the process.
	InMemory bool

	BusyTimeout    time.Duration
	BackupsPerSlot int
}

// RedisConfig holds the optional statistics cache settings.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int

	StatsTTL    time.Duration
	DialTimeout time.Duration
}

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// TelegramConfig holds the report chat settings. Both fields empty disables
// sending.
type TelegramConfig struct {
	Token   string
	ChatID  int64
	BaseURL string
	Timeout time.Duration
}

// Enabled reports whether reports can be sent to a chat.
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// ReportConfig holds the names and the Hijri date printed in messages.
type ReportConfig struct {
	HalaqaName  string
	CenterName  string
	TeacherName string

	HijriDay   int
	HijriMonth string
	HijriYear  int
}

// SchedulerConfig holds the daily report schedule.
type SchedulerConfig struct {
	Enabled    bool
	ReportCron string
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
}

// Load reads the given .env files (default ".env") when they exist, then
// builds the configuration from the environment. Variables already set in the
// environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", f, err)
		}
	}

	cfg := &Config{
		App:           loadAppConfig(),
		Storage:       loadStorageConfig(),
		Redis:         loadRedisConfig(),
		HTTP:          loadHTTPConfig(),
		Report:        loadReportConfig(),
		Scheduler:     loadSchedulerConfig(),
		Observability: loadObservabilityConfig(),
	}

	var err error
	if cfg.Telegram, err = loadTelegramConfig(); err != nil {
		return nil, fmt.Errorf("telegram config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", string(EnvDevelopment)))
	timezone := getEnv("APP_TIMEZONE", "Asia/Riyadh")

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	return AppConfig{
		Name:            getEnv("APP_NAME", "halaqa-tracker"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		Timezone:        timezone,
		Location:        loc,
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Path:           getEnv("STORAGE_PATH", "halaqa.db"),
		InMemory:       getEnvBool("STORAGE_MEMORY", false),
		BusyTimeout:    getEnvDuration("STORAGE_BUSY_TIMEOUT", 5*time.Second),
		BackupsPerSlot: getEnvInt("STORAGE_BACKUPS", 20),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:     getEnvBool("REDIS_ENABLED", false),
		Host:        getEnv("REDIS_HOST", "localhost"),
		Port:        getEnvInt("REDIS_PORT", 6379),
		Password:    getEnv("REDIS_PASSWORD", ""),
		DB:          getEnvInt("REDIS_DB", 0),
		StatsTTL:    getEnvDuration("REDIS_STATS_TTL", 24*time.Hour),
		DialTimeout: getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
	}
}

func loadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Host:           getEnv("HTTP_HOST", "127.0.0.1"),
		Port:           getEnvInt("HTTP_PORT", 8080),
		ReadTimeout:    getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		AllowedOrigins: getEnvSlice("HTTP_ALLOWED_ORIGINS", []string{"*"}),
	}
}

func loadTelegramConfig() (TelegramConfig, error) {
	chatID, err := getEnvInt64("TELEGRAM_CHAT_ID", 0)
	if err != nil {
		return TelegramConfig{}, err
	}
	return TelegramConfig{
		Token:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		ChatID:  chatID,
		BaseURL: getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		Timeout: getEnvDuration("TELEGRAM_TIMEOUT", 15*time.Second),
	}, nil
}

func loadReportConfig() ReportConfig {
	return ReportConfig{
		HalaqaName:  getEnv("HALAQA_NAME", ""),
		CenterName:  getEnv("CENTER_NAME", ""),
		TeacherName: getEnv("TEACHER_NAME", ""),
		HijriDay:    getEnvInt("HIJRI_DAY", 26),
		HijriMonth:  getEnv("HIJRI_MONTH", "ربيع الأول"),
		HijriYear:   getEnvInt("HIJRI_YEAR", 1447),
	}
}

func loadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:    getEnvBool("SCHEDULER_ENABLED", false),
		ReportCron: getEnv("SCHEDULER_REPORT_CRON", "0 21 * * *"),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid and reports every problem at
// once.
func (c *Config) Validate() error {
	var errs []string

	if !c.Storage.InMemory && strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, "STORAGE_PATH is required unless STORAGE_MEMORY is set")
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, "HTTP_PORT must be 1-65535")
	}
	if c.Redis.Enabled && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		errs = append(errs, "REDIS_PORT must be 1-65535")
	}

	if (c.Telegram.Token == "") != (c.Telegram.ChatID == 0) {
		errs = append(errs, "TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	if c.Report.HijriDay < 1 || c.Report.HijriDay > 30 {
		errs = append(errs, "HIJRI_DAY must be 1-30")
	}
	if c.Report.HijriYear < 1 {
		errs = append(errs, "HIJRI_YEAR must be positive")
	}

	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.ReportCron); err != nil {
			errs = append(errs, fmt.Sprintf("SCHEDULER_REPORT_CRON is invalid: %v", err))
		}
		if !c.Telegram.Enabled() {
			errs = append(errs, "SCHEDULER_ENABLED requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// getEnvInt64 fails loudly: a mistyped chat id would otherwise send reports
// nowhere.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return i, nil
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var result []string
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
