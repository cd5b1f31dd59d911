package bot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"vocabbot/internal/models"
)

// activeWindow marks a user as currently active for the viewer API
const activeWindow = 5 * time.Minute

// gameResultType tags the only payload kind the game endpoint accepts
const gameResultType = "game_result"

// HTTPServer handles HTTP requests for the viewer API and game results
type HTTPServer struct {
	bot         *Bot
	webhookMode bool // If false (polling mode), skip authentication for easier local dev
}

// NewHTTPServer creates a new HTTP server bound to the bot
func NewHTTPServer(bot *Bot, webhookMode bool) *HTTPServer {
	return &HTTPServer{
		bot:         bot,
		webhookMode: webhookMode,
	}
}

// RegisterRoutes registers the API routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/users", hs.handleUsers)
	mux.HandleFunc("/api/users/", hs.handleUserWords)
	mux.HandleFunc("/api/game-results", hs.handleGameResults)
}

// validateTelegramInitData validates the Telegram Mini App initData and
// returns the authenticated user ID
func (hs *HTTPServer) validateTelegramInitData(initData string) (int64, error) {
	if initData == "" {
		return 0, fmt.Errorf("missing initData")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("invalid initData format: %w", err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return 0, fmt.Errorf("missing hash in initData")
	}
	values.Del("hash")

	// Data-check-string: sorted key=value pairs joined with newlines
	var keys []string
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dataCheckString strings.Builder
	for i, k := range keys {
		if i > 0 {
			dataCheckString.WriteByte('\n')
		}
		dataCheckString.WriteString(k)
		dataCheckString.WriteByte('=')
		dataCheckString.WriteString(values.Get(k))
	}

	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(hs.bot.token))
	secret := secretKey.Sum(nil)

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(dataCheckString.String()))
	calculatedHash := hex.EncodeToString(h.Sum(nil))

	if calculatedHash != hash {
		return 0, fmt.Errorf("invalid hash")
	}

	authDateStr := values.Get("auth_date")
	if authDateStr == "" {
		return 0, fmt.Errorf("missing auth_date")
	}
	var authDate int64
	fmt.Sscanf(authDateStr, "%d", &authDate)
	if time.Now().Unix()-authDate > 86400 {
		return 0, fmt.Errorf("initData is too old")
	}

	userStr := values.Get("user")
	if userStr == "" {
		return 0, fmt.Errorf("missing user data")
	}
	var userData struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(userStr), &userData); err != nil {
		return 0, fmt.Errorf("invalid user data: %w", err)
	}

	return userData.ID, nil
}

// authMiddleware validates Telegram Mini App authentication.
// In polling mode (webhookMode=false), authentication is skipped for easier local development.
func (hs *HTTPServer) authMiddleware(next func(w http.ResponseWriter, r *http.Request, userID int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !hs.webhookMode {
			hs.bot.logger.Debug("Skipping authentication (polling mode)",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			next(w, r, 0)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "tma ") {
			hs.bot.logger.Warn("Missing or invalid authorization header")
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		initData := strings.TrimPrefix(authHeader, "tma ")
		userID, err := hs.validateTelegramInitData(initData)
		if err != nil {
			hs.bot.logger.Warn("Failed to validate initData",
				zap.Error(err),
				zap.String("remote_addr", r.RemoteAddr),
			)
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		next(w, r, userID)
	}
}

// userView is a user record augmented with an activity flag
type userView struct {
	models.User
	Active bool `json:"active"`
}

// handleUsers returns all registered users with their activity status
func (hs *HTTPServer) handleUsers(w http.ResponseWriter, r *http.Request) {
	hs.authMiddleware(func(w http.ResponseWriter, r *http.Request, _ int64) {
		if r.Method != http.MethodGet {
			http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		users, err := hs.bot.db.ListUsers(r.Context())
		if err != nil {
			hs.bot.logger.Error("Failed to list users", zap.Error(err))
			http.Error(w, `{"error":"Failed to fetch users"}`, http.StatusInternalServerError)
			return
		}

		now := time.Now()
		views := make([]userView, 0, len(users))
		for _, u := range users {
			views = append(views, userView{
				User:   u,
				Active: now.Sub(u.LastActive) < activeWindow,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views)
	})(w, r)
}

// handleUserWords returns one user's vocabulary
// (GET /api/users/{id}/words)
func (hs *HTTPServer) handleUserWords(w http.ResponseWriter, r *http.Request) {
	hs.authMiddleware(func(w http.ResponseWriter, r *http.Request, _ int64) {
		if r.Method != http.MethodGet {
			http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || parts[1] != "words" {
			http.NotFound(w, r)
			return
		}
		var userID int64
		if _, err := fmt.Sscanf(parts[0], "%d", &userID); err != nil || userID == 0 {
			http.Error(w, `{"error":"Invalid user id"}`, http.StatusBadRequest)
			return
		}

		words, err := hs.bot.db.ListWords(r.Context(), userID, "")
		if err != nil {
			hs.bot.logger.Error("Failed to list words", zap.Error(err), zap.Int64("user_id", userID))
			http.Error(w, `{"error":"Failed to fetch words"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(words)
	})(w, r)
}

// gameResultRequest is the payload posted by the word game
type gameResultRequest struct {
	UserID int64 `json:"user_id"`
	models.GameResult
}

// handleGameResults records a finished game: learned words gain a
// practice point, the best score is raised when beaten and the user gets
// a summary message in the chat
func (hs *HTTPServer) handleGameResults(w http.ResponseWriter, r *http.Request) {
	hs.authMiddleware(func(w http.ResponseWriter, r *http.Request, authUserID int64) {
		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		var req gameResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			hs.bot.logger.Warn("Failed to decode game result", zap.Error(err))
			http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Type != gameResultType {
			http.Error(w, `{"error":"Unsupported payload type"}`, http.StatusBadRequest)
			return
		}

		// The authenticated identity wins over whatever the client sent.
		userID := req.UserID
		if authUserID != 0 {
			userID = authUserID
		}
		if userID == 0 {
			http.Error(w, `{"error":"Missing user id"}`, http.StatusBadRequest)
			return
		}

		learned, isRecord, err := hs.bot.db.RecordGameResult(r.Context(), userID, req.Score, req.LearnedWords)
		if err != nil {
			hs.bot.logger.Error("Failed to record game result",
				zap.Error(err),
				zap.Int64("user_id", userID),
			)
			http.Error(w, `{"error":"Failed to record result"}`, http.StatusInternalServerError)
			return
		}

		hs.bot.logger.Info("Game result recorded",
			zap.Int64("user_id", userID),
			zap.Int("score", req.Score),
			zap.Int("learned", learned),
			zap.Bool("record", isRecord),
		)

		summary := fmt.Sprintf("🎮 Результат гри: %d балів\n📚 Вивчено слів: %d", req.Score, learned)
		if isRecord {
			summary += fmt.Sprintf("\n🏆 Новий рекорд: %d!", req.Score)
		}
		hs.bot.reply(userID, summary)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "success",
		})
	})(w, r)
}
