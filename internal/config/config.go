package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string

	// Gemini credentials, tried in order; the client rotates to the next
	// one on quota errors
	GeminiAPIKeys []string

	PixabayAPIKey string

	// Base URL of the word game Mini App
	WebAppURL string

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)

	// SQLite database file path
	SQLitePath string

	// HTTP port for the liveness and admin endpoints
	Port string

	UseMockDB bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Gemini API keys (comma-separated, blanks skipped)
	for _, key := range strings.Split(os.Getenv("GEMINI_API_KEYS"), ",") {
		if key = strings.TrimSpace(key); key != "" {
			config.GeminiAPIKeys = append(config.GeminiAPIKeys, key)
		}
	}

	config.PixabayAPIKey = os.Getenv("PIXABAY_API_KEY")
	config.WebAppURL = os.Getenv("WEB_APP_URL")

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	config.SQLitePath = os.Getenv("SQLITE_PATH")
	if config.SQLitePath == "" {
		config.SQLitePath = "data/words.db"
	}

	config.Port = os.Getenv("PORT")
	if config.Port == "" {
		config.Port = "8080"
	}

	// Use Mock DB (default: false)
	config.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"

	return config, nil
}
