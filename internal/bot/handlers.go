package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HandleUpdate dispatches a single update to the message or callback
// path
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

// handleMessage processes incoming messages with panic recovery
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic in message handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", message.Chat.ID),
			)
			b.reply(message.Chat.ID, "❌ Сталася помилка. Спробуйте ще раз.")
		}
	}()

	// Service messages (e.g. from a linked channel) carry no sender
	if message.From == nil {
		return
	}

	userID := message.From.ID

	if !b.allowMessage(userID) {
		return
	}

	if err := b.db.RegisterUser(ctx, userID, message.From.UserName); err != nil {
		b.logger.Error("Failed to register user", zap.Error(err), zap.Int64("user_id", userID))
	}
	if err := b.db.TouchUser(ctx, userID); err != nil {
		b.logger.Error("Failed to touch user", zap.Error(err), zap.Int64("user_id", userID))
	}

	// Continue an active conversation unless the user issued a command,
	// which always takes over.
	if state := b.getState(userID); state != nil {
		if state.Step == -1 {
			b.clearState(userID)
		} else if message.IsCommand() {
			// /exit clears the state itself and reports it; any other
			// command abandons the conversation and starts fresh.
			if strings.ToLower(message.Command()) != "exit" {
				b.clearState(userID)
			}
		} else {
			b.handleConversation(ctx, message, state)
			return
		}
	}

	if !message.IsCommand() {
		b.replyWithMarkup(message.Chat.ID, unknownCommandText, mainKeyboard())
		return
	}

	switch strings.ToLower(message.Command()) {
	case "start":
		b.handleStart(ctx, message)
	case "add_word":
		b.handleAddWordStart(message)
	case "delete_word":
		b.handleDeleteWordStart(message)
	case "all_words":
		b.handleViewWordsStart(ctx, message)
	case "practice":
		b.handlePracticeStart(ctx, message)
	case "stats":
		b.handleStats(ctx, message)
	case "word_of_day":
		b.handleWordOfDayStart(message)
	case "ai":
		b.handleAIStart(message)
	case "exit":
		b.handleExit(message)
	default:
		b.replyWithMarkup(message.Chat.ID, unknownCommandText, mainKeyboard())
	}
}
