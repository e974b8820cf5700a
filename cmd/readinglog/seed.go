package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/booklens/booklens-server/internal/domain"
	"github.com/booklens/booklens-server/internal/service"
)

var seedDays int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Record random reading sessions for the reader's books",
	Long: `Record random reading sessions over the past N days for the reader's
books, through the same path the API uses, so counters and progress move
exactly as they would for real sessions. Completed books are skipped.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedDays, "days", 14, "Number of past days to fill, today included")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if seedDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := newContext()
	defer cancel()

	uid, err := a.userID(ctx)
	if err != nil {
		return err
	}

	books, err := a.books.List(ctx, uid)
	if err != nil {
		return err
	}

	candidates := make([]*domain.Book, 0, len(books))
	for _, b := range books {
		if b.Status != domain.BookStatusCompleted {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return fmt.Errorf("%s has no unfinished books to read", userEmail)
	}

	loc, err := a.cfg.Reading.Location()
	if err != nil {
		return err
	}
	now := time.Now().In(loc)

	recorded := 0
	for day := seedDays - 1; day >= 0; day-- {
		// Always read today and yesterday; other days are skipped one time in five.
		if day > 1 && rand.Float32() > 0.8 {
			continue
		}

		for range 1 + rand.IntN(3) {
			book := candidates[rand.IntN(len(candidates))]

			// Between 6am and 11pm local time.
			start := time.Date(now.Year(), now.Month(), now.Day()-day, 6+rand.IntN(17), rand.IntN(60), 0, 0, loc)
			if start.After(now) {
				continue
			}

			minutes := 5 + rand.IntN(40)
			_, err := a.sessions.Record(ctx, uid, service.RecordSessionInput{
				BookID:          book.ID,
				PagesRead:       minutes / 2,
				DurationSeconds: int64(minutes * 60),
				StartTime:       start,
			})
			if err != nil {
				a.log.Warn("Failed to record session", "book_id", book.ID, "error", err)
				continue
			}
			recorded++
		}
	}

	fmt.Printf("Recorded %d sessions across %d books\n", recorded, len(candidates))
	return nil
}
