package models

import "time"

// User represents a registered bot user
type User struct {
	UserID     int64     `db:"user_id" json:"user_id"`
	Username   string    `db:"username" json:"username"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	LastActive time.Time `db:"last_active" json:"last_active"`
	BestScore  int       `db:"best_score" json:"best_score"`
}

// Word represents a vocabulary entry owned by a user.
// A user may keep the same word in several languages; the
// (user, word, language) triple is unique.
type Word struct {
	UserID        int64  `db:"user_id" json:"-"`
	Word          string `db:"word" json:"word"`
	Translation   string `db:"translation" json:"translation"`
	Language      string `db:"language" json:"language"`
	UsageCount    int    `db:"usage_count" json:"usage_count"`
	ImageURL      string `db:"image_url" json:"image_url,omitempty"`
	Association   string `db:"association" json:"association,omitempty"`
	Transcription string `db:"transcription" json:"transcription,omitempty"`
}

// GameResult is the payload delivered by the word game Web App
type GameResult struct {
	Type         string   `json:"type"`
	Score        int      `json:"score"`
	LearnedWords []string `json:"learned_words"`
}

// GameWord is a single word/translation pair embedded into the game URL
type GameWord struct {
	Word        string `json:"w"`
	Translation string `json:"t"`
}
