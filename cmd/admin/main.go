package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"vocabbot/internal/models"
	"vocabbot/internal/storage/sqlite"
)

// pollInterval is how often the view is refreshed
const pollInterval = 5 * time.Second

// activeWindow marks a user as currently active
const activeWindow = 5 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using existing environment variables")
	}

	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = "data/words.db"
	}

	// Optional: a user ID argument narrows the view to one vocabulary
	var userID int64
	if len(os.Args) > 1 {
		id, err := strconv.ParseInt(os.Args[1], 10, 64)
		if err != nil {
			log.Fatalf("Invalid user id %q: %v", os.Args[1], err)
		}
		userID = id
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if userID != 0 {
			printWords(ctx, db, userID)
		} else {
			printUsers(ctx, db)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// printUsers renders the user table, active users first
func printUsers(ctx context.Context, db *sqlite.DB) {
	users, err := db.ListUsers(ctx)
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		return
	}

	now := time.Now()
	active := func(u models.User) bool {
		return now.Sub(u.LastActive) < activeWindow
	}
	sort.SliceStable(users, func(i, j int) bool {
		ai, aj := active(users[i]), active(users[j])
		if ai != aj {
			return ai
		}
		return users[i].LastActive.After(users[j].LastActive)
	})

	fmt.Printf("\n=== Users (%s) ===\n", now.Format("15:04:05"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tREGISTERED\tLAST ACTIVE\tBEST\tSTATUS")
	for _, u := range users {
		status := "idle"
		if active(u) {
			status = "ACTIVE"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			u.UserID,
			u.Username,
			u.StartDate.Format("2006-01-02"),
			u.LastActive.Format("2006-01-02 15:04"),
			u.BestScore,
			status,
		)
	}
	w.Flush()
}

// printWords renders one user's vocabulary
func printWords(ctx context.Context, db *sqlite.DB, userID int64) {
	words, err := db.ListWords(ctx, userID, "")
	if err != nil {
		log.Printf("Failed to list words: %v", err)
		return
	}

	fmt.Printf("\n=== Words for user %d (%d total) ===\n", userID, len(words))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WORD\tTRANSLATION\tLANGUAGE\tPRACTICED")
	for _, word := range words {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			word.Word,
			word.Translation,
			word.Language,
			word.UsageCount,
		)
	}
	w.Flush()
}
