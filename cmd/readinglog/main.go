// Package main provides readinglog, an offline tool for inspecting and seeding
// a BookLens data directory without running the HTTP server.
//
// Usage:
//
//	readinglog --user reader@example.com books
//	readinglog --user reader@example.com calendar --year 2024 --month 3
//	readinglog --user reader@example.com day 2024-03-05
//	readinglog --user reader@example.com seed --days 14
//	readinglog reindex
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/booklens/booklens-server/internal/config"
	"github.com/booklens/booklens-server/internal/logger"
	"github.com/booklens/booklens-server/internal/service"
	"github.com/booklens/booklens-server/internal/store/sqlite"
)

var (
	dataPath   string
	timezone   string
	userEmail  string
	outFormat  string
	verboseLog bool
)

var rootCmd = &cobra.Command{
	Use:           "readinglog",
	Short:         "Inspect and seed a BookLens data directory",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Data directory (default: DATA_PATH or ~/BookLens/data)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "", "Timezone for day and month windows (default: READING_TIMEZONE)")
	rootCmd.PersistentFlags().StringVar(&userEmail, "user", "", "Email of the reader to act as")
	rootCmd.PersistentFlags().StringVar(&outFormat, "format", "human", "Output format (json, human)")
	rootCmd.PersistentFlags().BoolVar(&verboseLog, "verbose", false, "Log debug output to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the subset of the server's wiring the subcommands need.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *sqlite.Store
	books    *service.BookService
	sessions *service.ReadingSessionService
	calendar *service.CalendarService
}

// openApp loads configuration the same way the server does, with the
// command-line flags of this tool taking precedence.
func openApp() (*app, error) {
	var args []string
	if dataPath != "" {
		args = append(args, "-data-path", dataPath)
	}
	if timezone != "" {
		args = append(args, "-reading-timezone", timezone)
	}

	cfg, err := config.Load(flag.NewFlagSet("readinglog", flag.ContinueOnError), args)
	if err != nil {
		return nil, err
	}

	level := "warn"
	if verboseLog {
		level = "debug"
	}
	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(level),
	})

	loc, err := cfg.Reading.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	db, err := sqlite.Open(cfg.Storage.DatabasePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	// The on-disk index may be locked by a running server, so book writes
	// from this tool skip it. `readinglog reindex` catches it up afterwards.
	cascade := service.NewCascadeCoordinator(db, nil, log.Logger)

	return &app{
		cfg:      cfg,
		log:      log,
		store:    db,
		books:    service.NewBookService(db, cascade, nil, nil, log.Logger),
		sessions: service.NewReadingSessionService(db, log.Logger),
		calendar: service.NewCalendarService(db, loc, log.Logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("Failed to close database", "error", err)
	}
}

// userID resolves the --user flag.
func (a *app) userID(ctx context.Context) (int64, error) {
	if userEmail == "" {
		return 0, fmt.Errorf("--user is required")
	}
	u, err := a.store.GetUserByEmail(ctx, userEmail)
	if err != nil {
		return 0, fmt.Errorf("look up %s: %w", userEmail, err)
	}
	return u.ID, nil
}

func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Minute)
}
