package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"vocabbot/internal/models"
)

// DB is the sqlite-backed storage implementation
type DB struct {
	conn *sqlx.DB
}

// New opens (creating if necessary) the sqlite database at path
func New(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	conn, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite doesn't support multiple writers
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	return &DB{conn: conn}, nil
}

// Initialize creates the schema and reconciles columns added by later
// versions. Safe to run on every startup.
func (db *DB) Initialize(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			username TEXT,
			start_date TIMESTAMP,
			last_active TIMESTAMP,
			best_score INTEGER DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_words (
			user_id INTEGER,
			word TEXT,
			translation TEXT,
			language TEXT,
			usage_count INTEGER DEFAULT 0,
			image_url TEXT,
			association TEXT,
			transcription TEXT,
			PRIMARY KEY(user_id, word, language)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_words table: %w", err)
	}

	return db.reconcileColumns(ctx)
}

// reconcileColumns adds columns introduced by later versions to databases
// created before them. Existing data is untouched; a column that is
// already present is skipped.
func (db *DB) reconcileColumns(ctx context.Context) error {
	alters := []string{
		"ALTER TABLE user_words ADD COLUMN image_url TEXT",
		"ALTER TABLE user_words ADD COLUMN association TEXT",
		"ALTER TABLE user_words ADD COLUMN transcription TEXT",
		"ALTER TABLE users ADD COLUMN best_score INTEGER DEFAULT 0",
	}
	for _, stmt := range alters {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("failed to reconcile schema: %w", err)
		}
	}
	return nil
}

// RegisterUser creates the user row on first contact
func (db *DB) RegisterUser(ctx context.Context, userID int64, username string) error {
	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, username, start_date, last_active, best_score) VALUES (?, ?, ?, ?, 0)`,
		userID, username, now, now)
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// TouchUser updates the last-activity timestamp
func (db *DB) TouchUser(ctx context.Context, userID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_active = ? WHERE user_id = ?`,
		time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	return nil
}

// GetUser returns a single user row
func (db *DB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	err := db.conn.GetContext(ctx, &u,
		`SELECT user_id, COALESCE(username, '') AS username, start_date, last_active,
		        COALESCE(best_score, 0) AS best_score
		 FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := db.conn.SelectContext(ctx, &users,
		`SELECT user_id, COALESCE(username, '') AS username, start_date, last_active,
		        COALESCE(best_score, 0) AS best_score
		 FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// RecordGameResult applies a game result: usage counters first, then the
// best score, raised only when the new score beats the stored one.
func (db *DB) RecordGameResult(ctx context.Context, userID int64, score int, learnedWords []string) (int, bool, error) {
	learned := 0
	for _, word := range learnedWords {
		res, err := db.conn.ExecContext(ctx,
			`UPDATE user_words SET usage_count = usage_count + 1 WHERE user_id = ? AND word = ?`,
			userID, word)
		if err != nil {
			return learned, false, fmt.Errorf("failed to increment usage: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			learned++
		}
	}

	var best sql.NullInt64
	err := db.conn.GetContext(ctx, &best, `SELECT best_score FROM users WHERE user_id = ?`, userID)
	if err != nil && err != sql.ErrNoRows {
		return learned, false, fmt.Errorf("failed to read best score: %w", err)
	}

	if score > int(best.Int64) {
		_, err := db.conn.ExecContext(ctx,
			`UPDATE users SET best_score = ? WHERE user_id = ?`, score, userID)
		if err != nil {
			return learned, false, fmt.Errorf("failed to update best score: %w", err)
		}
		return learned, true, nil
	}
	return learned, false, nil
}

// UpsertWord inserts a vocabulary entry or refreshes the enrichment
// fields of an existing one
func (db *DB) UpsertWord(ctx context.Context, w models.Word) (bool, error) {
	var exists int
	err := db.conn.GetContext(ctx, &exists,
		`SELECT 1 FROM user_words WHERE user_id = ? AND word = ? AND language = ?`,
		w.UserID, w.Word, w.Language)
	if err == nil {
		// Entry already exists: refresh presentation fields only when a
		// new image came with the re-addition. The usage counter is
		// never reset.
		if w.ImageURL != "" {
			_, err := db.conn.ExecContext(ctx,
				`UPDATE user_words SET image_url = ?, association = ?, transcription = ?
				 WHERE user_id = ? AND word = ? AND language = ?`,
				w.ImageURL, w.Association, w.Transcription, w.UserID, w.Word, w.Language)
			if err != nil {
				return false, fmt.Errorf("failed to refresh word: %w", err)
			}
		}
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to check word: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO user_words (user_id, word, translation, language, usage_count, image_url, association, transcription)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		w.UserID, w.Word, w.Translation, w.Language, w.ImageURL, w.Association, w.Transcription)
	if err != nil {
		return false, fmt.Errorf("failed to insert word: %w", err)
	}
	return true, nil
}

// ListWords returns the user's vocabulary, optionally filtered by language
func (db *DB) ListWords(ctx context.Context, userID int64, language string) ([]models.Word, error) {
	query := `SELECT user_id, word, translation, COALESCE(language, '') AS language,
	                 usage_count, COALESCE(image_url, '') AS image_url,
	                 COALESCE(association, '') AS association,
	                 COALESCE(transcription, '') AS transcription
	          FROM user_words WHERE user_id = ?`
	args := []interface{}{userID}
	if language != "" {
		query += " AND language = ?"
		args = append(args, language)
	}

	var words []models.Word
	if err := db.conn.SelectContext(ctx, &words, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	return words, nil
}

// IncrementUsage bumps the counter of every entry matching the word.
// Matching is by word only: the same word kept in two languages advances
// in both.
func (db *DB) IncrementUsage(ctx context.Context, userID int64, word string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE user_words SET usage_count = usage_count + 1 WHERE user_id = ? AND word = ?`,
		userID, word)
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// DeleteWord removes every entry matching the word, across all languages
func (db *DB) DeleteWord(ctx context.Context, userID int64, word string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_words WHERE user_id = ? AND word = ?`, userID, word)
	if err != nil {
		return false, fmt.Errorf("failed to delete word: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// UpdateImage replaces the stored image URL for every entry matching the word
func (db *DB) UpdateImage(ctx context.Context, userID int64, word, imageURL string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE user_words SET image_url = ? WHERE user_id = ? AND word = ?`,
		imageURL, userID, word)
	if err != nil {
		return fmt.Errorf("failed to update image: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
