package storage

import (
	"context"

	"vocabbot/internal/models"
)

// Storage defines the interface for data storage operations
type Storage interface {
	// User operations

	// RegisterUser creates the user row on first contact; an existing
	// row is never overwritten.
	RegisterUser(ctx context.Context, userID int64, username string) error
	// TouchUser updates the user's last-activity timestamp.
	TouchUser(ctx context.Context, userID int64) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// RecordGameResult increments the usage counter of every learned
	// word and raises the user's best score when the new score exceeds
	// it. Returns how many words matched and whether a new record was set.
	RecordGameResult(ctx context.Context, userID int64, score int, learnedWords []string) (int, bool, error)

	// Vocabulary operations

	// UpsertWord inserts the entry, or, when the (user, word, language)
	// key already exists, refreshes image/association/transcription only
	// (and only when a new image is supplied). Returns true when a new
	// row was created.
	UpsertWord(ctx context.Context, w models.Word) (bool, error)
	// ListWords returns all entries for the user; language "" means all
	// languages.
	ListWords(ctx context.Context, userID int64, language string) ([]models.Word, error)
	// IncrementUsage bumps the counter of every entry matching the word,
	// regardless of language.
	IncrementUsage(ctx context.Context, userID int64, word string) error
	// DeleteWord removes every entry matching the word, regardless of
	// language. Returns true when at least one row was removed.
	DeleteWord(ctx context.Context, userID int64, word string) (bool, error)
	// UpdateImage replaces the stored image URL for every entry matching
	// the word.
	UpdateImage(ctx context.Context, userID int64, word, imageURL string) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
