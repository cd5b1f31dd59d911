package bot

import (
	"sort"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vocabbot/internal/models"
)

// send delivers a prepared message, logging delivery failures. A nil api
// (tests) is a no-op.
func (b *Bot) send(c tgbotapi.Chattable) {
	if b.api == nil {
		return
	}
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("Failed to send message", zap.Error(err))
	}
}

// request performs an API request that has no message result, such as
// answering a callback query
func (b *Bot) request(c tgbotapi.Chattable) {
	if b.api == nil {
		return
	}
	if _, err := b.api.Request(c); err != nil {
		b.logger.Warn("Failed to perform API request", zap.Error(err))
	}
}

// reply sends plain text to the chat
func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// replyWithMarkup sends text with a reply or inline keyboard attached
func (b *Bot) replyWithMarkup(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.send(msg)
}

// replyPhoto sends a photo by URL with a caption; an empty URL falls back
// to a plain text message so a missing image never loses the answer
func (b *Bot) replyPhoto(chatID int64, photoURL, caption string, markup interface{}) {
	if photoURL == "" {
		b.replyWithMarkup(chatID, caption, markup)
		return
	}
	caption = truncateRunes(caption, captionLimit)
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
	msg.Caption = caption
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	b.send(msg)
}

// truncateRunes caps a string at limit characters. Telegram limits count
// characters, not bytes, and a byte cut could split a UTF-8 sequence.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// languageKeyboard builds a one-button-per-row reply keyboard of language
// choices plus an exit row
func languageKeyboard(languages []string, withAllOption bool) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for _, l := range languages {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(l)))
	}
	if withAllOption {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(allLanguagesOption)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("/exit")))

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.OneTimeKeyboard = true
	return kb
}

// vocabularyLanguages returns the sorted distinct languages present in
// the user's vocabulary
func vocabularyLanguages(words []models.Word) []string {
	seen := make(map[string]bool)
	var languages []string
	for _, w := range words {
		if w.Language == "" || seen[w.Language] {
			continue
		}
		seen[w.Language] = true
		languages = append(languages, w.Language)
	}
	sort.Strings(languages)
	return languages
}

// regenKeyboard builds the inline "another photo" button for a rendered
// image; mode distinguishes which flow the callback belongs to
func regenKeyboard(mode string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Інше фото", "regen:"+mode),
		),
	)
}
