package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleCallbackQuery routes inline-button presses; currently the only
// family is photo regeneration ("regen:<mode>")
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic in callback handler",
				zap.Any("panic", r),
				zap.Int64("user_id", query.From.ID),
			)
		}
	}()

	if !strings.HasPrefix(query.Data, "regen:") {
		b.request(tgbotapi.NewCallback(query.ID, ""))
		return
	}
	mode := strings.TrimPrefix(query.Data, "regen:")

	state := b.getState(query.From.ID)
	if state == nil {
		b.request(tgbotapi.NewCallbackWithAlert(query.ID, "Дані застаріли. Почніть заново."))
		return
	}
	imgQuery, _ := state.Data["img_query"].(string)
	if imgQuery == "" {
		b.request(tgbotapi.NewCallbackWithAlert(query.ID, "Дані застаріли. Почніть заново."))
		return
	}

	newURL := b.enricher.ResolveImage(ctx, imgQuery, true)
	if newURL == "" {
		b.request(tgbotapi.NewCallbackWithAlert(query.ID, "Не знайдено іншого фото."))
		return
	}

	switch mode {
	case "add":
		if word, _ := state.Data["word"].(string); word != "" {
			if err := b.db.UpdateImage(ctx, query.From.ID, word, newURL); err != nil {
				b.logger.Error("Failed to update image",
					zap.Error(err),
					zap.Int64("user_id", query.From.ID),
					zap.String("word", word),
				)
			}
		}
	case "wod":
		// The word is not persisted yet; refresh the draft so a later
		// "add" picks up the chosen picture.
		state.Data["image_url"] = newURL
	}

	if query.Message != nil {
		media := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(newURL))
		media.Caption = query.Message.Caption
		edit := tgbotapi.EditMessageMediaConfig{
			BaseEdit: tgbotapi.BaseEdit{
				ChatID:      query.Message.Chat.ID,
				MessageID:   query.Message.MessageID,
				ReplyMarkup: query.Message.ReplyMarkup,
			},
			Media: media,
		}
		b.request(edit)
	}

	b.request(tgbotapi.NewCallback(query.ID, "Фото оновлено!"))
}
