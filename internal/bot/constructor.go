package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"vocabbot/internal/storage"
)

// throttleWindow is the advisory per-user cooldown between messages
const throttleWindow = time.Second

// NewBot creates a new Telegram bot
func NewBot(token, webAppURL string, db storage.Storage, gen Generator, enricher Enricher, translator Translator, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	throttle := ttlcache.New[int64, struct{}](
		ttlcache.WithTTL[int64, struct{}](throttleWindow),
	)
	go throttle.Start()

	return &Bot{
		api:        api,
		token:      token,
		db:         db,
		gen:        gen,
		enricher:   enricher,
		translator: translator,
		webAppURL:  webAppURL,
		states:     make(map[int64]*ConversationState),
		throttle:   throttle,
		logger:     logger,
	}, nil
}

// Stop releases background resources
func (b *Bot) Stop() {
	if b.throttle != nil {
		b.throttle.Stop()
	}
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
}

// allowMessage reports whether a message from the user may be processed
// now. A user already inside the cooldown window is silently dropped;
// this is advisory spam control, not a correctness mechanism.
func (b *Bot) allowMessage(userID int64) bool {
	if b.throttle == nil {
		return true
	}
	if b.throttle.Has(userID) {
		return false
	}
	b.throttle.Set(userID, struct{}{}, ttlcache.DefaultTTL)
	return true
}
