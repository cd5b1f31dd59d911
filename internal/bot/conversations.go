package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vocabbot/internal/models"
)

// wordOfDayAttempts bounds candidate generation when the service keeps
// proposing words the user already knows
const wordOfDayAttempts = 3

// handleConversation processes multi-step conversations
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Command {
	case "add_word":
		b.handleAddWordConversation(ctx, message, state)
	case "delete_word":
		b.handleDeleteWordConversation(ctx, message, state)
	case "practice":
		b.handlePracticeConversation(ctx, message, state)
	case "view":
		b.handleViewWordsConversation(ctx, message, state)
	case "word_of_day":
		b.handleWordOfDayConversation(ctx, message, state)
	case "ai":
		b.handleAIConversation(ctx, message, state)
	}

	// Clean up completed conversations
	if state.Step == -1 {
		b.clearState(message.From.ID)
	}
}

// handleAddWordConversation drives the add-word flow: word, language,
// translation, then enrichment and persistence, looping back to the word
// step for rapid successive additions
func (b *Bot) handleAddWordConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	text := strings.TrimSpace(message.Text)

	switch state.Step {
	case 1: // Waiting for the word
		state.Data["word"] = text
		state.Step = 2
		b.replyWithMarkup(message.Chat.ID, "🌍 Оберіть мову слова:",
			languageKeyboard(SupportedLanguages, false))

	case 2: // Waiting for the language
		if !isSupportedLanguage(text) {
			b.reply(message.Chat.ID, "❌ Невідома мова. Виберіть зі списку або /exit.")
			return
		}
		state.Data["language"] = text

		word, _ := state.Data["word"].(string)
		auto := b.translator.Translate(ctx, word)
		state.Data["auto_translation"] = auto

		kb := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Зберегти: "+auto)),
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("/exit")),
		)
		kb.OneTimeKeyboard = true

		state.Step = 3
		b.replyWithMarkup(message.Chat.ID,
			fmt.Sprintf("🔍 Автопереклад: %s\n\nНатисніть кнопку, щоб зберегти його, АБО напишіть свій переклад вручну:", auto),
			kb)

	case 3: // Waiting for the translation
		word, _ := state.Data["word"].(string)
		language, _ := state.Data["language"].(string)

		translation := text
		if strings.HasPrefix(text, "Зберегти:") {
			translation, _ = state.Data["auto_translation"].(string)
		}

		b.reply(message.Chat.ID, "⏳ Зберігаю, шукаю картинку та генерую асоціацію...")

		enriched := b.enricher.Enrich(ctx, word, translation, language)
		searchQuery := enriched.SearchPhrase
		if searchQuery == "" {
			searchQuery = word
		}
		imageURL := b.enricher.ResolveImage(ctx, searchQuery, false)

		// Kept for the photo-regeneration callback
		state.Data["img_query"] = searchQuery

		created, err := b.db.UpsertWord(ctx, models.Word{
			UserID:        message.From.ID,
			Word:          word,
			Translation:   translation,
			Language:      language,
			ImageURL:      imageURL,
			Association:   enriched.Association,
			Transcription: enriched.Transcription,
		})
		if err != nil {
			b.logger.Error("Failed to upsert word",
				zap.Error(err),
				zap.Int64("user_id", message.From.ID),
				zap.String("word", word),
			)
		}

		if !created {
			b.reply(message.Chat.ID, fmt.Sprintf("⚠️ Слово '%s' вже є у вашому словнику.", word))
		} else {
			caption := fmt.Sprintf("✅ Додано: %s %s — %s", word, enriched.Transcription, translation)
			if enriched.Association != "" {
				caption += "\n🧠 Асоціація: " + enriched.Association
			}
			b.replyPhoto(message.Chat.ID, imageURL, caption, regenKeyboard("add"))
		}

		b.replyWithMarkup(message.Chat.ID, "👇 Продовжити:", mainKeyboard())
		state.Step = 1
	}
}

// handleDeleteWordConversation removes a word by text; the flow ends
// after one attempt either way
func (b *Bot) handleDeleteWordConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	text := strings.TrimSpace(message.Text)

	removed, err := b.db.DeleteWord(ctx, message.From.ID, text)
	if err != nil {
		b.logger.Error("Failed to delete word",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
			zap.String("word", text),
		)
	}

	if removed {
		b.replyWithMarkup(message.Chat.ID, fmt.Sprintf("🗑️ Слово '%s' видалено.", text), mainKeyboard())
	} else {
		b.replyWithMarkup(message.Chat.ID, fmt.Sprintf("❌ Слова '%s' немає в словнику.", text), mainKeyboard())
	}

	state.Step = -1
}

// handlePracticeConversation runs the translate-back quiz over a
// shuffled, capped selection of the user's vocabulary
func (b *Bot) handlePracticeConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	text := strings.TrimSpace(message.Text)

	switch state.Step {
	case 1: // Waiting for the language choice
		language := text
		if language == allLanguagesOption {
			language = ""
		}

		words, err := b.db.ListWords(ctx, message.From.ID, language)
		if err != nil {
			b.logger.Error("Failed to list practice words",
				zap.Error(err),
				zap.Int64("user_id", message.From.ID),
			)
		}
		if len(words) == 0 {
			b.reply(message.Chat.ID, "Пусто.")
			return
		}

		rand.Shuffle(len(words), func(i, j int) {
			words[i], words[j] = words[j], words[i]
		})
		if len(words) > practiceCap {
			words = words[:practiceCap]
		}

		state.Data["plist"] = words
		state.Data["pidx"] = 0
		state.Step = 2
		b.sendPracticeQuestion(message.Chat.ID, words[0])

	case 2: // Waiting for the answer
		words, _ := state.Data["plist"].([]models.Word)
		idx, _ := state.Data["pidx"].(int)
		if idx >= len(words) {
			state.Step = -1
			return
		}

		current := words[idx]
		if strings.EqualFold(text, current.Word) {
			if err := b.db.IncrementUsage(ctx, message.From.ID, current.Word); err != nil {
				b.logger.Error("Failed to increment usage",
					zap.Error(err),
					zap.Int64("user_id", message.From.ID),
				)
			}
			b.reply(message.Chat.ID, fmt.Sprintf("✅ Правильно! %s", current.Word))
		} else {
			answer := "❌ Ні. " + current.Word
			if current.Transcription != "" {
				answer += " " + current.Transcription
			}
			if current.Association != "" {
				answer += "\n💡 " + current.Association
			}
			b.reply(message.Chat.ID, answer)
		}

		idx++
		if idx >= len(words) {
			b.replyWithMarkup(message.Chat.ID, "🏁 Кінець тренування.", mainKeyboard())
			state.Step = -1
			return
		}
		state.Data["pidx"] = idx
		b.sendPracticeQuestion(message.Chat.ID, words[idx])
	}
}

// sendPracticeQuestion asks for the translation of the next queued word
func (b *Bot) sendPracticeQuestion(chatID int64, w models.Word) {
	question := fmt.Sprintf("✏️ Перекладіть: %s (%s)", w.Translation, w.Language)
	b.replyPhoto(chatID, w.ImageURL, question, nil)
}

// handleViewWordsConversation renders the vocabulary for the chosen
// language as a flat list, truncated at the message-size limit
func (b *Bot) handleViewWordsConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	choice := strings.TrimSpace(message.Text)

	language := choice
	if language == allLanguagesOption {
		language = ""
	}

	words, err := b.db.ListWords(ctx, message.From.ID, language)
	if err != nil {
		b.logger.Error("Failed to list words",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID),
		)
	}

	if len(words) == 0 {
		b.replyWithMarkup(message.Chat.ID, "📭 Словник порожній.", mainKeyboard())
		state.Step = -1
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 Слова (%s):\n", choice)
	for _, w := range words {
		if w.Transcription != "" {
			fmt.Fprintf(&sb, "%s %s — %s\n", w.Word, w.Transcription, w.Translation)
		} else {
			fmt.Fprintf(&sb, "%s — %s\n", w.Word, w.Translation)
		}
	}

	if utf8.RuneCountInString(sb.String()) > messageLimit {
		b.replyWithMarkup(message.Chat.ID,
			fmt.Sprintf("📝 Слова (%s):\n... (занадто багато)", choice), mainKeyboard())
	} else {
		b.replyWithMarkup(message.Chat.ID, sb.String(), mainKeyboard())
	}

	state.Step = -1
}

// handleWordOfDayConversation proposes AI-generated vocabulary
// candidates and lets the user add them, ask for the next one or leave
func (b *Bot) handleWordOfDayConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	text := strings.TrimSpace(message.Text)

	switch state.Step {
	case 1: // Waiting for the language choice
		if !isSupportedLanguage(text) {
			b.reply(message.Chat.ID, "❌ Невідома мова. Виберіть зі списку.")
			return
		}
		b.generateWordOfDay(ctx, message, state, text)

	case 2: // Waiting for the action
		switch text {
		case "➡️ Наступне слово":
			language, _ := state.Data["lang"].(string)
			b.generateWordOfDay(ctx, message, state, language)

		case "➕ Додати це слово":
			word, _ := state.Data["new_word"].(string)
			if word == "" {
				b.replyWithMarkup(message.Chat.ID, "Дані застаріли.", mainKeyboard())
				return
			}

			translation, _ := state.Data["translation"].(string)
			language, _ := state.Data["lang"].(string)
			imageURL, _ := state.Data["image_url"].(string)
			association, _ := state.Data["association"].(string)
			transcription, _ := state.Data["transcription"].(string)

			created, err := b.db.UpsertWord(ctx, models.Word{
				UserID:        message.From.ID,
				Word:          word,
				Translation:   translation,
				Language:      language,
				ImageURL:      imageURL,
				Association:   association,
				Transcription: transcription,
			})
			if err != nil {
				b.logger.Error("Failed to add word of day",
					zap.Error(err),
					zap.Int64("user_id", message.From.ID),
				)
			}
			if created {
				confirm := "✅ Додано!"
				if association != "" {
					confirm += "\n🧠 " + association
				}
				b.reply(message.Chat.ID, confirm)
			} else {
				b.reply(message.Chat.ID, "⚠️ Вже є.")
			}

		default: // includes the explicit exit button
			b.clearState(message.From.ID)
			b.replyWithMarkup(message.Chat.ID, "🚪 Ви вийшли з режиму.\n\n"+commandsText, mainKeyboard())
		}
	}
}

// generateWordOfDay asks the generative service for a candidate the user
// does not know yet, enriches it and presents the action keyboard
func (b *Bot) generateWordOfDay(ctx context.Context, message *tgbotapi.Message, state *ConversationState, language string) {
	userID := message.From.ID
	b.reply(message.Chat.ID, fmt.Sprintf("⏳ Генерую слово (%s)...", language))

	known, err := b.db.ListWords(ctx, userID, language)
	if err != nil {
		b.logger.Error("Failed to list words for word of day",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}
	existing := make(map[string]bool, len(known))
	var exclusions []string
	for _, w := range known {
		existing[strings.ToLower(w.Word)] = true
		exclusions = append(exclusions, w.Word)
	}
	if len(exclusions) > 30 {
		exclusions = exclusions[len(exclusions)-30:]
	}

	all, err := b.db.ListWords(ctx, userID, "")
	if err != nil {
		b.logger.Error("Failed to list words for difficulty",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}
	totalXP := 0
	for _, w := range all {
		totalXP += w.UsageCount
	}
	level, _, _ := ComputeLevel(totalXP)
	difficulty := "A1"
	switch {
	case level > 8:
		difficulty = "C1"
	case level > 3:
		difficulty = "B1"
	}

	var candidate, translation string
	for i := 0; i < wordOfDayAttempts; i++ {
		prompt := fmt.Sprintf(
			"Згенеруй 1 (одне) цікаве слово мовою %s для рівня %s. "+
				"Важливо: не повторюй ці слова: [%s]. "+
				"Формат відповіді суворо: 'Слово - Переклад'. Переклад українською. "+
				"Без зайвого тексту.",
			language, difficulty, strings.Join(exclusions, ", "),
		)

		answer, err := b.gen.Generate(ctx, prompt, "")
		if err != nil {
			b.logger.Warn("Word of day generation failed", zap.Error(err))
			continue
		}

		answer = strings.TrimSpace(strings.ReplaceAll(answer, "*", ""))
		parts := strings.SplitN(answer, " - ", 2)
		if len(parts) != 2 {
			continue
		}
		word := strings.TrimSpace(parts[0])
		if word == "" || existing[strings.ToLower(word)] {
			continue
		}
		candidate = word
		translation = strings.TrimSpace(parts[1])
		break
	}

	if candidate == "" {
		b.replyWithMarkup(message.Chat.ID, "⚠️ Не вдалося знайти нове унікальне слово.", mainKeyboard())
		state.Step = -1
		return
	}

	enriched := b.enricher.Enrich(ctx, candidate, translation, language)
	searchQuery := enriched.SearchPhrase
	if searchQuery == "" {
		searchQuery = candidate
	}
	imageURL := b.enricher.ResolveImage(ctx, searchQuery, false)

	state.Data["new_word"] = candidate
	state.Data["translation"] = translation
	state.Data["lang"] = language
	state.Data["image_url"] = imageURL
	state.Data["association"] = enriched.Association
	state.Data["transcription"] = enriched.Transcription
	state.Data["img_query"] = searchQuery

	caption := fmt.Sprintf("🌟 Слово дня: %s %s\n🇺🇦 Переклад: %s", candidate, enriched.Transcription, translation)
	b.replyPhoto(message.Chat.ID, imageURL, caption, regenKeyboard("wod"))

	actions := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("➕ Додати це слово")),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("➡️ Наступне слово"),
			tgbotapi.NewKeyboardButton("🚪 Вихід"),
		),
	)
	b.replyWithMarkup(message.Chat.ID, "Дії:", actions)
	state.Step = 2
}

// handleAIConversation explains a word with the generative service,
// fetching the explanation and an illustration concurrently
func (b *Bot) handleAIConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	text := strings.TrimSpace(message.Text)

	switch state.Step {
	case 1: // Waiting for the prompt
		state.Data["prompt"] = text
		state.Step = 2
		b.replyWithMarkup(message.Chat.ID, "🌍 Мова слова?",
			languageKeyboard(append(append([]string{}, SupportedLanguages...), "Українська"), false))

	case 2: // Waiting for the language of the word
		prompt, _ := state.Data["prompt"].(string)

		b.replyWithMarkup(message.Chat.ID, "🤖 Оброблюю...", mainKeyboard())

		systemPrompt := fmt.Sprintf(
			"Ти — вчитель іноземних мов. "+
				"Поясни слово '%s' (мова: %s). "+
				"Структура відповіді:\n"+
				"1. Слово - [Транскрипція українськими літерами] - Переклад\n"+
				"2. Коротке значення.\n"+
				"3. Один приклад речення з перекладом.\n"+
				"Без Markdown.",
			prompt, text,
		)

		// Explanation and illustration are independent; fetch both at
		// once and answer only when both are in.
		var (
			explanation string
			genErr      error
			imageURL    string
			wg          sync.WaitGroup
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			explanation, genErr = b.gen.Generate(ctx, prompt, systemPrompt)
		}()
		go func() {
			defer wg.Done()
			imageURL = b.enricher.ResolveImage(ctx, prompt, false)
		}()
		wg.Wait()

		if genErr != nil {
			b.logger.Warn("AI explanation failed",
				zap.Error(genErr),
				zap.Int64("user_id", message.From.ID),
			)
			b.replyWithMarkup(message.Chat.ID, genErr.Error(), mainKeyboard())
		} else {
			explanation = strings.ReplaceAll(explanation, "*", "")
			state.Data["img_query"] = prompt
			b.replyPhoto(message.Chat.ID, imageURL, "🤖 Ось пояснення:\n\n"+explanation, regenKeyboard("ai"))
		}

		state.Step = 1
		b.replyWithMarkup(message.Chat.ID, "🤖 Ще слово? (або /exit)", mainKeyboard())
	}
}

// isSupportedLanguage validates a language choice against the fixed set
func isSupportedLanguage(language string) bool {
	for _, l := range SupportedLanguages {
		if l == language {
			return true
		}
	}
	return false
}
