package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabbot/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "words.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Initialize(context.Background()))
	return db
}

func TestInitialize_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// Startup schema creation must be safe to repeat
	assert.NoError(t, db.Initialize(context.Background()))
}

func TestRegisterUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RegisterUser(ctx, 123, "alice"))

	user, err := db.GetUser(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, int64(123), user.UserID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 0, user.BestScore)

	firstSeen := user.StartDate

	// Re-registration must not reset the original record
	require.NoError(t, db.RegisterUser(ctx, 123, "alice-renamed"))
	user, err = db.GetUser(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, firstSeen.Unix(), user.StartDate.Unix())
}

func TestUpsertWord(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := db.UpsertWord(ctx, models.Word{
		UserID: 123, Word: "hello", Translation: "привіт", Language: "English",
		ImageURL: "https://img.example/a.jpg", Transcription: "[хелоу]",
	})
	require.NoError(t, err)
	assert.True(t, created)

	// Same key again: not created, presentation fields refreshed
	created, err = db.UpsertWord(ctx, models.Word{
		UserID: 123, Word: "hello", Translation: "ігнорується", Language: "English",
		ImageURL: "https://img.example/b.jpg", Transcription: "[нове]",
	})
	require.NoError(t, err)
	assert.False(t, created)

	words, err := db.ListWords(ctx, 123, "English")
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "привіт", words[0].Translation)
	assert.Equal(t, "https://img.example/b.jpg", words[0].ImageURL)
	assert.Equal(t, "[нове]", words[0].Transcription)

	// Re-addition without an image leaves the stored one alone
	_, err = db.UpsertWord(ctx, models.Word{
		UserID: 123, Word: "hello", Translation: "привіт", Language: "English",
	})
	require.NoError(t, err)

	words, err = db.ListWords(ctx, 123, "English")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/b.jpg", words[0].ImageURL)

	// Same word in another language is a separate entry
	created, err = db.UpsertWord(ctx, models.Word{
		UserID: 123, Word: "hello", Translation: "привіт", Language: "German",
	})
	require.NoError(t, err)
	assert.True(t, created)
}

func TestListWords_LanguageFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hello", Translation: "привіт", Language: "English"})
	db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hallo", Translation: "привіт", Language: "German"})
	db.UpsertWord(ctx, models.Word{UserID: 999, Word: "chat", Translation: "кіт", Language: "French"})

	all, err := db.ListWords(ctx, 123, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	english, err := db.ListWords(ctx, 123, "English")
	require.NoError(t, err)
	require.Len(t, english, 1)
	assert.Equal(t, "hello", english[0].Word)
}

func TestIncrementUsage_AllLanguages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hello", Translation: "привіт", Language: "English"})
	db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hello", Translation: "привіт", Language: "German"})

	require.NoError(t, db.IncrementUsage(ctx, 123, "hello"))

	words, err := db.ListWords(ctx, 123, "")
	require.NoError(t, err)
	require.Len(t, words, 2)
	for _, w := range words {
		assert.Equal(t, 1, w.UsageCount, "both language entries advance together")
	}
}

func TestDeleteWord_AllLanguages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hello", Translation: "привіт", Language: "English"})
	db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hello", Translation: "привіт", Language: "German"})
	db.UpsertWord(ctx, models.Word{UserID: 123, Word: "cat", Translation: "кіт", Language: "English"})

	removed, err := db.DeleteWord(ctx, 123, "hello")
	require.NoError(t, err)
	assert.True(t, removed)

	words, err := db.ListWords(ctx, 123, "")
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "cat", words[0].Word)

	removed, err = db.DeleteWord(ctx, 123, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUpdateImage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hello", Translation: "привіт", Language: "English"})

	require.NoError(t, db.UpdateImage(ctx, 123, "hello", "https://img.example/new.jpg"))

	words, err := db.ListWords(ctx, 123, "English")
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "https://img.example/new.jpg", words[0].ImageURL)
}

func TestRecordGameResult(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RegisterUser(ctx, 123, "player"))
	db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hello", Translation: "привіт", Language: "English"})

	// An unknown word in learned_words is ignored
	learned, isRecord, err := db.RecordGameResult(ctx, 123, 42, []string{"hello", "stranger"})
	require.NoError(t, err)
	assert.Equal(t, 1, learned)
	assert.True(t, isRecord)

	words, err := db.ListWords(ctx, 123, "English")
	require.NoError(t, err)
	assert.Equal(t, 1, words[0].UsageCount)

	user, err := db.GetUser(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, 42, user.BestScore)

	// A lower score is not a record and leaves the stored one alone
	_, isRecord, err = db.RecordGameResult(ctx, 123, 10, nil)
	require.NoError(t, err)
	assert.False(t, isRecord)

	user, err = db.GetUser(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, 42, user.BestScore)
}
