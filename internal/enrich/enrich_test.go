package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestParseTriple(t *testing.T) {
	testCases := []struct {
		name     string
		answer   string
		word     string
		expected Enrichment
	}{
		{
			name:   "full triple",
			answer: "[хелоу]|Funny line|bird in sky",
			word:   "hello",
			expected: Enrichment{
				Transcription: "[хелоу]",
				Association:   "Funny line",
				SearchPhrase:  "bird in sky",
			},
		},
		{
			name:   "markdown asterisks stripped",
			answer: "**[фрідом]**|Уяви птаха.|bird flying out of cage",
			word:   "freedom",
			expected: Enrichment{
				Transcription: "[фрідом]",
				Association:   "Уяви птаха.",
				SearchPhrase:  "bird flying out of cage",
			},
		},
		{
			name:   "extra fields keep first three",
			answer: "[а]|б|в|г",
			word:   "word",
			expected: Enrichment{
				Transcription: "[а]",
				Association:   "б",
				SearchPhrase:  "в",
			},
		},
		{
			name:   "two fields fall back to word as search phrase",
			answer: "[кат]|Кіт на даху",
			word:   "cat",
			expected: Enrichment{
				Transcription: "[кат]",
				Association:   "Кіт на даху",
				SearchPhrase:  "cat",
			},
		},
		{
			name:   "no pipes yields fallbacks only",
			answer: "Sorry, I cannot help with that.",
			word:   "dog",
			expected: Enrichment{
				Transcription: TranscriptionFallback,
				Association:   "",
				SearchPhrase:  "dog",
			},
		},
		{
			name:   "whitespace around fields trimmed",
			answer: "  [тест]  |  асоціація  |  a test photo  ",
			word:   "test",
			expected: Enrichment{
				Transcription: "[тест]",
				Association:   "асоціація",
				SearchPhrase:  "a test photo",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseTriple(tc.answer, tc.word))
		})
	}
}

type fakeGenerator struct {
	answer string
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	return f.answer, f.err
}

type fakeImages struct {
	url string
}

func (f *fakeImages) Resolve(ctx context.Context, query string, wantRandom bool) string {
	return f.url
}

func TestEnrich_GenerationFailure(t *testing.T) {
	e := New(&fakeGenerator{err: errors.New("backend down")}, &fakeImages{}, zap.NewNop())

	got := e.Enrich(context.Background(), "hello", "привіт", "English")

	assert.Equal(t, TranscriptionFallback, got.Transcription)
	assert.Empty(t, got.Association)
	assert.Equal(t, "hello", got.SearchPhrase)
}

func TestEnrich_Success(t *testing.T) {
	e := New(&fakeGenerator{answer: "[хелоу]|Смішна фраза|smiling person waving"}, &fakeImages{}, zap.NewNop())

	got := e.Enrich(context.Background(), "hello", "привіт", "English")

	assert.Equal(t, "[хелоу]", got.Transcription)
	assert.Equal(t, "Смішна фраза", got.Association)
	assert.Equal(t, "smiling person waving", got.SearchPhrase)
}

func TestResolveImage(t *testing.T) {
	e := New(&fakeGenerator{}, &fakeImages{url: "https://img.example/cat.jpg"}, zap.NewNop())

	assert.Equal(t, "https://img.example/cat.jpg", e.ResolveImage(context.Background(), "cat", false))
}
