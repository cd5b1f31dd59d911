package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"vocabbot/internal/ai"
	"vocabbot/internal/bot"
	"vocabbot/internal/config"
	"vocabbot/internal/enrich"
	"vocabbot/internal/images"
	"vocabbot/internal/storage"
	"vocabbot/internal/storage/sqlite"
	"vocabbot/internal/storage/stubs"
	"vocabbot/internal/translate"
)

// heartbeatInterval keeps free-tier hosting from idling the process out
const heartbeatInterval = 40 * time.Second

// App represents the application
type App struct {
	config    *config.Config
	logger    *zap.Logger
	db        storage.Storage
	bot       *bot.Bot
	server    *http.Server
	scheduler *gocron.Scheduler
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{config: cfg, logger: logger}

	log.Println("Starting Vocab Bot...")

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initBot(); err != nil {
		return nil, err
	}
	app.initScheduler()
	app.initHTTPServer()

	return app, nil
}

// initDatabase initializes the word store
func (a *App) initDatabase() error {
	var db storage.Storage
	if a.config.UseMockDB {
		log.Println("Using mock database")
		db = stubs.NewMockDB()
	} else {
		log.Printf("Opening SQLite database at %s", a.config.SQLitePath)
		sqliteDB, err := sqlite.New(a.config.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open SQLite database: %w", err)
		}
		db = sqliteDB
	}

	// Initialize database schema
	ctx := context.Background()
	if err := db.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Println("Database initialized successfully")

	a.db = db
	return nil
}

// initBot wires the generative, image and translation clients into the
// Telegram bot
func (a *App) initBot() error {
	keyring := ai.NewKeyring(a.config.GeminiAPIKeys)
	if keyring.Len() == 0 {
		log.Println("No Gemini API keys configured, generation will be unavailable")
	}
	gen := ai.NewClient(keyring, a.logger)
	imgClient := images.NewClient(a.config.PixabayAPIKey, a.logger)
	translator := translate.NewClient(a.logger)
	enricher := enrich.New(gen, imgClient, a.logger)

	telegramBot, err := bot.NewBot(
		a.config.TelegramToken,
		a.config.WebAppURL,
		a.db,
		gen,
		enricher,
		translator,
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	a.bot = telegramBot
	return nil
}

// initScheduler starts the periodic heartbeat
func (a *App) initScheduler() {
	a.scheduler = gocron.NewScheduler(time.UTC)
	a.scheduler.Every(heartbeatInterval).Do(func() {
		a.logger.Debug("Heartbeat")
	})
	a.scheduler.StartAsync()
}

// initHTTPServer initializes the HTTP server for liveness probes, the
// webhook and the viewer/game API
func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	// Liveness endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "alive")
	})

	// Root endpoint
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		mode := "polling"
		if a.config.WebhookMode {
			mode = "webhook"
		}
		fmt.Fprintf(w, "Vocab Bot is running (mode: %s)", mode)
	})

	// Webhook endpoint (only used in webhook mode)
	mux.HandleFunc("/telegram-webhook", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a.bot.HandleWebhookUpdate(w, r)
	})

	// Viewer and game-result API
	api := bot.NewHTTPServer(a.bot, a.config.WebhookMode)
	api.RegisterRoutes(mux)

	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", a.config.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.config.WebhookMode {
		log.Printf("Starting bot in WEBHOOK mode (URL: %s)", a.config.WebhookURL)
		if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
		log.Println("Webhook configured. Bot will receive updates via HTTP endpoint /telegram-webhook")
	} else {
		go func() {
			log.Println("Starting bot in POLLING mode...")
			if err := a.bot.Start(ctx); err != nil && err != context.Canceled {
				log.Printf("Bot stopped: %v", err)
			}
		}()
	}

	<-sigChan

	log.Println("Shutting down...")
	cancel()
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	a.bot.Stop()

	if err := a.db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
		return err
	}

	log.Println("Shutdown complete")
	return nil
}
