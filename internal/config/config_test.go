package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("GEMINI_API_KEYS", "")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.TelegramToken)
	assert.Empty(t, cfg.GeminiAPIKeys)
	assert.Equal(t, "data/words.db", cfg.SQLitePath)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.WebhookMode)
	assert.False(t, cfg.UseMockDB)
}

func TestLoadFromEnv_RequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnv_GeminiKeys(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("GEMINI_API_KEYS", "key-a, key-b,,  ,key-c")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"key-a", "key-b", "key-c"}, cfg.GeminiAPIKeys)
}

func TestLoadFromEnv_WebhookRequiresURL(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("WEBHOOK_MODE", "true")
	t.Setenv("WEBHOOK_URL", "")

	_, err := LoadFromEnv()
	assert.Error(t, err)

	t.Setenv("WEBHOOK_URL", "https://bot.example/telegram-webhook")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.WebhookMode)
	assert.Equal(t, "https://bot.example/telegram-webhook", cfg.WebhookURL)
}
