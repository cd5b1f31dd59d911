package bot

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vocabbot/internal/models"
)

// gameWordLimit caps how many pairs are embedded into the game URL
const gameWordLimit = 50

// commandsText lists the available commands for help and fallback replies
const commandsText = "Доступні команди:\n" +
	"/add_word – додати нове слово 📚\n" +
	"/delete_word – видалити слово ❌\n" +
	"/all_words – список усіх слів 📝\n" +
	"/practice – тренування 🎯\n" +
	"/stats – ваша статистика 📊\n" +
	"/word_of_day – слово дня 🌟\n" +
	"/ai – допомога ШІ 🤖\n" +
	"/exit – вихід з режиму 🚪"

// unknownCommandText answers any input the dispatcher cannot route
const unknownCommandText = "❌ Невідома команда.\n" + commandsText

// mainKeyboard builds the persistent command keyboard
func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/add_word"),
			tgbotapi.NewKeyboardButton("/all_words"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/practice"),
			tgbotapi.NewKeyboardButton("/delete_word"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/stats"),
			tgbotapi.NewKeyboardButton("/word_of_day"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/ai"),
			tgbotapi.NewKeyboardButton("/exit"),
		),
	)
}

// gameKeyboard builds an inline button opening the word game with the
// user's least-practiced words embedded in the URL. Returns nil when no
// game URL is configured.
func (b *Bot) gameKeyboard(ctx context.Context, userID int64) *tgbotapi.InlineKeyboardMarkup {
	if b.webAppURL == "" {
		return nil
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🎮 Грати в слова (Web App)", b.gameURL(ctx, userID)),
		),
	)
	return &kb
}

// gameURL embeds up to gameWordLimit least-practiced word/translation
// pairs into the Web App URL as URL-encoded JSON
func (b *Bot) gameURL(ctx context.Context, userID int64) string {
	words, err := b.db.ListWords(ctx, userID, "")
	if err != nil {
		b.logger.Warn("Failed to list words for game URL",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return b.webAppURL
	}
	if len(words) == 0 {
		return b.webAppURL
	}

	// Least practiced first
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].UsageCount < words[j].UsageCount
	})
	if len(words) > gameWordLimit {
		words = words[:gameWordLimit]
	}

	pairs := make([]models.GameWord, 0, len(words))
	for _, w := range words {
		pairs = append(pairs, models.GameWord{Word: w.Word, Translation: w.Translation})
	}

	data, err := json.Marshal(pairs)
	if err != nil {
		return b.webAppURL
	}
	return b.webAppURL + "?data=" + url.QueryEscape(string(data))
}
