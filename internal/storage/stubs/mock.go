package stubs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"vocabbot/internal/models"
)

// MockDB is an in-memory implementation of the Storage interface for testing
type MockDB struct {
	mu    sync.RWMutex
	users map[int64]*models.User
	words []models.Word

	// FailAll makes every operation report an error, for exercising the
	// degraded-storage paths.
	FailAll bool
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		users: make(map[int64]*models.User),
		words: make([]models.Word, 0),
	}
}

// Initialize does nothing for the mock DB
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

func (m *MockDB) failure() error {
	if m.FailAll {
		return fmt.Errorf("storage unavailable")
	}
	return nil
}

// RegisterUser creates the user on first contact, never overwriting
func (m *MockDB) RegisterUser(ctx context.Context, userID int64, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}

	if _, ok := m.users[userID]; ok {
		return nil
	}
	now := time.Now().UTC()
	m.users[userID] = &models.User{
		UserID:     userID,
		Username:   username,
		StartDate:  now,
		LastActive: now,
	}
	return nil
}

// TouchUser updates the last-activity timestamp
func (m *MockDB) TouchUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}

	if u, ok := m.users[userID]; ok {
		u.LastActive = time.Now().UTC()
	}
	return nil
}

// GetUser returns a copy of the user
func (m *MockDB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d not found", userID)
	}
	copied := *u
	return &copied, nil
}

// ListUsers returns all users sorted by ID
func (m *MockDB) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	var users []models.User
	for _, u := range m.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].UserID < users[j].UserID
	})
	return users, nil
}

// RecordGameResult increments learned words and conditionally raises the record
func (m *MockDB) RecordGameResult(ctx context.Context, userID int64, score int, learnedWords []string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return 0, false, err
	}

	learned := 0
	for _, word := range learnedWords {
		matched := false
		for i := range m.words {
			if m.words[i].UserID == userID && m.words[i].Word == word {
				m.words[i].UsageCount++
				matched = true
			}
		}
		if matched {
			learned++
		}
	}

	u, ok := m.users[userID]
	if !ok {
		return learned, false, nil
	}
	if score > u.BestScore {
		u.BestScore = score
		return learned, true, nil
	}
	return learned, false, nil
}

// UpsertWord inserts or refreshes a vocabulary entry
func (m *MockDB) UpsertWord(ctx context.Context, w models.Word) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return false, err
	}

	for i := range m.words {
		if m.words[i].UserID == w.UserID && m.words[i].Word == w.Word && m.words[i].Language == w.Language {
			if w.ImageURL != "" {
				m.words[i].ImageURL = w.ImageURL
				m.words[i].Association = w.Association
				m.words[i].Transcription = w.Transcription
			}
			return false, nil
		}
	}

	w.UsageCount = 0
	m.words = append(m.words, w)
	return true, nil
}

// ListWords returns the user's vocabulary, optionally filtered by language
func (m *MockDB) ListWords(ctx context.Context, userID int64, language string) ([]models.Word, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	var words []models.Word
	for _, w := range m.words {
		if w.UserID != userID {
			continue
		}
		if language != "" && w.Language != language {
			continue
		}
		words = append(words, w)
	}
	return words, nil
}

// IncrementUsage bumps the counter of every entry matching the word
func (m *MockDB) IncrementUsage(ctx context.Context, userID int64, word string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}

	for i := range m.words {
		if m.words[i].UserID == userID && m.words[i].Word == word {
			m.words[i].UsageCount++
		}
	}
	return nil
}

// DeleteWord removes every entry matching the word
func (m *MockDB) DeleteWord(ctx context.Context, userID int64, word string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return false, err
	}

	kept := m.words[:0]
	removed := false
	for _, w := range m.words {
		if w.UserID == userID && w.Word == word {
			removed = true
			continue
		}
		kept = append(kept, w)
	}
	m.words = kept
	return removed, nil
}

// UpdateImage replaces the stored image URL for every entry matching the word
func (m *MockDB) UpdateImage(ctx context.Context, userID int64, word, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}

	for i := range m.words {
		if m.words[i].UserID == userID && m.words[i].Word == word {
			m.words[i].ImageURL = imageURL
		}
	}
	return nil
}

// FindWord is a test helper returning the entry for an exact key
func (m *MockDB) FindWord(userID int64, word, language string) (models.Word, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, w := range m.words {
		if w.UserID == userID && strings.EqualFold(w.Word, word) && w.Language == language {
			return w, true
		}
	}
	return models.Word{}, false
}

// Close does nothing for the mock DB
func (m *MockDB) Close() error {
	return nil
}
