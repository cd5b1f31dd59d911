package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"vocabbot/internal/enrich"
	"vocabbot/internal/storage"
)

// SupportedLanguages is the fixed set of languages a word may be added in
var SupportedLanguages = []string{"English", "German", "French", "Polish", "Spanish", "Italian"}

const (
	// Telegram hard limits
	messageLimit = 4096
	captionLimit = 1024

	// practiceCap bounds a practice session regardless of vocabulary size
	practiceCap = 10

	allLanguagesOption = "Усі мови"
)

// Generator produces free text for a prompt with an optional system
// instruction
type Generator interface {
	Generate(ctx context.Context, prompt, systemInstruction string) (string, error)
}

// Enricher produces the transcription/association/search-phrase triple
// and resolves search phrases to photos
type Enricher interface {
	Enrich(ctx context.Context, word, translation, language string) enrich.Enrichment
	ResolveImage(ctx context.Context, query string, wantRandom bool) string
}

// Translator performs best-effort translation of a word
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// Bot represents the Telegram bot wrapper
type Bot struct {
	api        *tgbotapi.BotAPI
	token      string
	db         storage.Storage
	gen        Generator
	enricher   Enricher
	translator Translator
	webAppURL  string
	states     map[int64]*ConversationState
	statesMu   sync.RWMutex
	throttle   *ttlcache.Cache[int64, struct{}]
	logger     *zap.Logger
}

// ConversationState tracks the state of multi-step commands. A user has
// at most one active flow; starting a new top-level command replaces the
// state wholesale, so no values leak between flows.
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]interface{}
}

func (b *Bot) getState(userID int64) *ConversationState {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()
	return b.states[userID]
}

func (b *Bot) setState(userID int64, state *ConversationState) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	b.states[userID] = state
}

func (b *Bot) clearState(userID int64) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	delete(b.states, userID)
}
