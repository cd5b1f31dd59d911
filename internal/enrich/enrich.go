package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// TranscriptionFallback is the sentinel used when the generative service
// gave no usable transcription.
const TranscriptionFallback = "[?]"

// Generator produces free text for a prompt with an optional system
// instruction
type Generator interface {
	Generate(ctx context.Context, prompt, systemInstruction string) (string, error)
}

// ImageSearcher resolves a search phrase to a photo URL, "" when absent
type ImageSearcher interface {
	Resolve(ctx context.Context, query string, wantRandom bool) string
}

// Enrichment is the parsed result of a word-analysis request. It is
// always populated: failed lookups fall back to the sentinel
// transcription, an empty association and the raw word as search phrase.
type Enrichment struct {
	Transcription string
	Association   string
	SearchPhrase  string
}

// Enricher turns a bare word/translation pair into a transcription, a
// mnemonic association and a text-free image-search phrase, then resolves
// that phrase to a photo.
type Enricher struct {
	gen    Generator
	images ImageSearcher
	logger *zap.Logger
}

// New creates an enricher over the given generative and image clients
func New(gen Generator, images ImageSearcher, logger *zap.Logger) *Enricher {
	return &Enricher{gen: gen, images: images, logger: logger}
}

// Enrich asks the generative service for a pipe-delimited
// transcription|association|search-phrase triple and parses it. Total
// function: any failure degrades to fallbacks, never an error.
func (e *Enricher) Enrich(ctx context.Context, word, translation, language string) Enrichment {
	prompt := fmt.Sprintf(
		"Analyze the word '%s' (language: %s, translation: '%s'). "+
			"Return ONLY a string in this format: "+
			"TRANSCRIPTION|ASSOCIATION|VISUAL_SEARCH_PROMPT\n"+
			"1. Transcription: Ukrainian letters inside brackets (e.g. [хелоу]).\n"+
			"2. Association: A short funny mnemonic sentence in Ukrainian to remember the word.\n"+
			"3. Visual Search Prompt: A short 3-5 word English phrase describing a photograph depicting the association, "+
			"strictly without any text, signs, or words in the image. Focus on objects, nature, or actions.\n"+
			"Example output for 'freedom': [фрідом]|Уяви птаха, який вилетів з клітки на волю.|bird flying out of cage in sky",
		word, language, translation,
	)

	answer, err := e.gen.Generate(ctx, prompt, "")
	if err != nil {
		e.logger.Warn("enrichment generation failed",
			zap.Error(err),
			zap.String("word", word),
		)
		return Enrichment{Transcription: TranscriptionFallback, SearchPhrase: word}
	}

	return ParseTriple(answer, word)
}

// ParseTriple splits a generative answer on the pipe delimiter. Three or
// more fields form the full triple; two fields are the legacy format with
// the raw word as search phrase; a pipe-less answer yields only the
// fallbacks.
func ParseTriple(answer, word string) Enrichment {
	text := strings.TrimSpace(strings.ReplaceAll(answer, "*", ""))
	parts := strings.Split(text, "|")

	if len(parts) >= 3 {
		return Enrichment{
			Transcription: strings.TrimSpace(parts[0]),
			Association:   strings.TrimSpace(parts[1]),
			SearchPhrase:  strings.TrimSpace(parts[2]),
		}
	}
	if len(parts) == 2 {
		return Enrichment{
			Transcription: strings.TrimSpace(parts[0]),
			Association:   strings.TrimSpace(parts[1]),
			SearchPhrase:  word,
		}
	}
	return Enrichment{
		Transcription: TranscriptionFallback,
		SearchPhrase:  word,
	}
}

// ResolveImage resolves a search phrase to a photo URL, "" when absent
func (e *Enricher) ResolveImage(ctx context.Context, query string, wantRandom bool) string {
	return e.images.Resolve(ctx, query, wantRandom)
}
