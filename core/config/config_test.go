package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:   "123:abc",
			AdminID: 42,
		},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, 10, cfg.Chat.MaxQueueSize)
	assert.Equal(t, 300, cfg.Chat.SessionTimeoutSeconds)
	assert.Equal(t, 5*time.Minute, cfg.Chat.SessionTimeout())
}

func TestNormalizeRequiredFields(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Telegram.AdminID = 0
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "Polling"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)

	cfg = validConfig()
	cfg.Telegram.RunMode = "carrier-pigeon"
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeWebhookRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	assert.Error(t, Normalize(cfg))

	cfg.Webhook = WebhookConfig{
		URL:    "https://bot.example.com/hook",
		Listen: "0.0.0.0",
		Port:   8443,
	}
	assert.NoError(t, Normalize(cfg))
}

func TestNormalizeChatBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Chat.MaxQueueSize = -1
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Chat.SessionTimeoutSeconds = -5
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Chat.MaxQueueSize = 3
	cfg.Chat.SessionTimeoutSeconds = 60
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, 3, cfg.Chat.MaxQueueSize)
	assert.Equal(t, time.Minute, cfg.Chat.SessionTimeout())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
telegram:
  token: "123:abc"
  admin_id: 42
  run_mode: longpoll
chat:
  max_queue_size: 5
  session_timeout_seconds: 120
logging:
  level: debug
  format: json
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Telegram.AdminID)
	assert.Equal(t, 5, cfg.Chat.MaxQueueSize)
	assert.Equal(t, 2*time.Minute, cfg.Chat.SessionTimeout())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
