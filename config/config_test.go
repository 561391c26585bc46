package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "APP_DEBUG", "APP_TIMEZONE", "STORAGE_PATH", "STORAGE_MEMORY",
		"REDIS_ENABLED", "REDIS_PORT", "REDIS_STATS_TTL", "HTTP_HOST", "HTTP_PORT",
		"HTTP_ALLOWED_ORIGINS", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"HALAQA_NAME", "CENTER_NAME", "TEACHER_NAME", "HIJRI_DAY", "HIJRI_MONTH",
		"HIJRI_YEAR", "SCHEDULER_ENABLED", "SCHEDULER_REPORT_CRON", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "Asia/Riyadh", cfg.App.Timezone)
	assert.Equal(t, "halaqa.db", cfg.Storage.Path)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Redis.StatsTTL)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.Telegram.Enabled())
	assert.Equal(t, "ربيع الأول", cfg.Report.HijriMonth)
	assert.Equal(t, "0 21 * * *", cfg.Scheduler.ReportCron)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"HALAQA_NAME=الفرقان\nTELEGRAM_BOT_TOKEN=123:abc\nTELEGRAM_CHAT_ID=-1001\nHTTP_PORT=9000\n"), 0o600))
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, k := range []string{"HALAQA_NAME", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
			_ = os.Unsetenv(k)
		}
	})

	assert.Equal(t, "الفرقان", cfg.Report.HalaqaName)
	assert.Equal(t, int64(-1001), cfg.Telegram.ChatID)
	assert.True(t, cfg.Telegram.Enabled())
	assert.Equal(t, 9100, cfg.HTTP.Port, "environment wins over .env")
}

func TestLoad_BadZoneFallsBackToUTC(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_TIMEZONE", "Nowhere/Special")

	cfg, err := Load(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.App.Location)
}

func TestLoad_InvalidChatID(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_CHAT_ID", "abc")

	_, err := Load(filepath.Join(t.TempDir(), "none"))
	assert.ErrorContains(t, err, "TELEGRAM_CHAT_ID must be an integer")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "0")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("HIJRI_DAY", "31")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("SCHEDULER_REPORT_CRON", "every evening")

	_, err := Load(filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "HTTP_PORT")
	assert.Contains(t, msg, "must be set together")
	assert.Contains(t, msg, "HIJRI_DAY")
	assert.Contains(t, msg, "SCHEDULER_REPORT_CRON is invalid")
	assert.Contains(t, msg, "SCHEDULER_ENABLED requires")
}
