package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleStart shows the welcome message, the command keyboard and the
// game button
func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	b.clearState(message.From.ID)

	b.replyWithMarkup(message.Chat.ID, "👋 Привіт!\nСпробуй нову гру 👇\n\n"+commandsText, mainKeyboard())
	if kb := b.gameKeyboard(ctx, message.From.ID); kb != nil {
		b.replyWithMarkup(message.Chat.ID, "🎮 Гра зі словами:", *kb)
	}
}

// handleExit abandons the active flow, if any
func (b *Bot) handleExit(message *tgbotapi.Message) {
	if b.getState(message.From.ID) == nil {
		b.replyWithMarkup(message.Chat.ID, "🚪 Зараз жоден з режимів не активний.", mainKeyboard())
		return
	}

	b.clearState(message.From.ID)
	b.replyWithMarkup(message.Chat.ID, "🚪 Ви вийшли з режиму.\n\n"+commandsText, mainKeyboard())
}

// handleAddWordStart initiates the add-word conversation
func (b *Bot) handleAddWordStart(message *tgbotapi.Message) {
	b.setState(message.From.ID, &ConversationState{
		Command: "add_word",
		Step:    1,
		Data:    make(map[string]interface{}),
	})

	b.replyWithMarkup(message.Chat.ID, "✏️ Введіть слово для додавання:", mainKeyboard())
}

// handleDeleteWordStart initiates the delete-word conversation
func (b *Bot) handleDeleteWordStart(message *tgbotapi.Message) {
	b.setState(message.From.ID, &ConversationState{
		Command: "delete_word",
		Step:    1,
		Data:    make(map[string]interface{}),
	})

	b.replyWithMarkup(message.Chat.ID, "🗑️ Введіть слово для видалення (або /exit):", mainKeyboard())
}

// handlePracticeStart initiates the practice conversation with a
// language choice derived from the user's actual vocabulary
func (b *Bot) handlePracticeStart(ctx context.Context, message *tgbotapi.Message) {
	words, err := b.db.ListWords(ctx, message.From.ID, "")
	if err != nil {
		b.logger.Error("Failed to list words for practice",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
		)
	}
	if len(words) == 0 {
		b.replyWithMarkup(message.Chat.ID, "📭 Ваш словник порожній. Додайте слова через /add_word.", mainKeyboard())
		return
	}

	b.setState(message.From.ID, &ConversationState{
		Command: "practice",
		Step:    1,
		Data:    make(map[string]interface{}),
	})

	b.replyWithMarkup(message.Chat.ID, "🎯 Оберіть мову для практики (або 'Усі мови'):",
		languageKeyboard(vocabularyLanguages(words), true))
}

// handleViewWordsStart initiates the view-words conversation
func (b *Bot) handleViewWordsStart(ctx context.Context, message *tgbotapi.Message) {
	words, err := b.db.ListWords(ctx, message.From.ID, "")
	if err != nil {
		b.logger.Error("Failed to list words",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
		)
	}
	if len(words) == 0 {
		b.replyWithMarkup(message.Chat.ID, "📭 Ваш словник порожній.", mainKeyboard())
		return
	}

	b.setState(message.From.ID, &ConversationState{
		Command: "view",
		Step:    1,
		Data:    make(map[string]interface{}),
	})

	b.replyWithMarkup(message.Chat.ID, "🌐 Оберіть мову:",
		languageKeyboard(vocabularyLanguages(words), true))
}

// handleWordOfDayStart initiates the word-of-day conversation
func (b *Bot) handleWordOfDayStart(message *tgbotapi.Message) {
	b.setState(message.From.ID, &ConversationState{
		Command: "word_of_day",
		Step:    1,
		Data:    make(map[string]interface{}),
	})

	b.replyWithMarkup(message.Chat.ID, "🌟 Оберіть мову для нового слова:",
		languageKeyboard(SupportedLanguages, false))
}

// handleAIStart initiates the AI-lookup conversation
func (b *Bot) handleAIStart(message *tgbotapi.Message) {
	b.setState(message.From.ID, &ConversationState{
		Command: "ai",
		Step:    1,
		Data:    make(map[string]interface{}),
	})

	b.replyWithMarkup(message.Chat.ID, "🤖 Введіть слово для пояснення:", mainKeyboard())
}

// handleStats renders the user's statistics: level, XP progress,
// per-language word counts and the game record
func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	words, err := b.db.ListWords(ctx, userID, "")
	if err != nil {
		b.logger.Error("Failed to list words for stats",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}

	totalCorrect := 0
	langCounts := make(map[string]int)
	for _, w := range words {
		totalCorrect += w.UsageCount
		langCounts[w.Language]++
	}

	level, currentXP, nextXP := ComputeLevel(totalCorrect)

	percent := currentXP * 10 / nextXP
	bar := strings.Repeat("🟩", percent) + strings.Repeat("⬜", 10-percent)

	bestScore := 0
	if user, err := b.db.GetUser(ctx, userID); err == nil {
		bestScore = user.BestScore
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Статистика\n")
	fmt.Fprintf(&sb, "🏆 Рівень: %d\n", level)
	fmt.Fprintf(&sb, "⭐ XP: %d/%d\n[%s]\n\n", currentXP, nextXP, bar)
	fmt.Fprintf(&sb, "📚 Всього слів: %d\n", len(words))
	fmt.Fprintf(&sb, "✅ Правильних відповідей: %d\n", totalCorrect)
	fmt.Fprintf(&sb, "🎮 Рекорд у грі: %d\n\nСлова по мовах:\n", bestScore)

	langs := make([]string, 0, len(langCounts))
	for l := range langCounts {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	for _, l := range langs {
		fmt.Fprintf(&sb, "- %s: %d сл.\n", l, langCounts[l])
	}

	b.replyWithMarkup(message.Chat.ID, sb.String(), mainKeyboard())
}
