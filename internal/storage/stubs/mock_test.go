package stubs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabbot/internal/models"
)

func TestMockDB_MirrorsStorageSemantics(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	require.NoError(t, db.Initialize(ctx))
	require.NoError(t, db.RegisterUser(ctx, 123, "alice"))

	created, err := db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hello", Translation: "привіт", Language: "English"})
	require.NoError(t, err)
	assert.True(t, created)

	// Duplicate key is not created again
	created, err = db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hello", Translation: "інше", Language: "English"})
	require.NoError(t, err)
	assert.False(t, created)

	// Increment and delete match by word only
	db.UpsertWord(ctx, models.Word{UserID: 123, Word: "hello", Translation: "привіт", Language: "German"})
	require.NoError(t, db.IncrementUsage(ctx, 123, "hello"))

	words, err := db.ListWords(ctx, 123, "")
	require.NoError(t, err)
	require.Len(t, words, 2)
	for _, w := range words {
		assert.Equal(t, 1, w.UsageCount)
	}

	removed, err := db.DeleteWord(ctx, 123, "hello")
	require.NoError(t, err)
	assert.True(t, removed)

	words, err = db.ListWords(ctx, 123, "")
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestMockDB_FailAll(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	db.FailAll = true

	assert.Error(t, db.RegisterUser(ctx, 123, "alice"))
	_, err := db.ListWords(ctx, 123, "")
	assert.Error(t, err)
	_, err = db.UpsertWord(ctx, models.Word{UserID: 123, Word: "x"})
	assert.Error(t, err)
}
