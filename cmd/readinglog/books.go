package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List the reader's books, most recently touched first",
	Args:  cobra.NoArgs,
	RunE:  runBooks,
}

func init() {
	rootCmd.AddCommand(booksCmd)
}

// bookRow is the JSON shape of one listed book.
type bookRow struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Author           string  `json:"author"`
	Status           string  `json:"status"`
	ReadPage         int     `json:"read_page"`
	TotalPage        int     `json:"total_page"`
	Progress         float64 `json:"progress"`
	TotalReadingTime int64   `json:"total_reading_time"`
}

func runBooks(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(); err != nil {
		return err
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

	rows := make([]bookRow, 0, len(books))
	for _, b := range books {
		rows = append(rows, bookRow{
			ID:               b.ID,
			Title:            b.Title,
			Author:           b.Author,
			Status:           b.Status.APIValue(),
			ReadPage:         b.ReadPage,
			TotalPage:        b.TotalPage,
			Progress:         b.Progress,
			TotalReadingTime: b.TotalReadingTime,
		})
	}

	if outFormat == "json" {
		return printJSON(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No books.")
		return nil
	}

	tw := newTable(os.Stdout)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tSTATUS\tPAGES\tPROGRESS\tTIME")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\t%.0f%%\t%s\n",
			r.ID, r.Title, r.Author, r.Status, r.ReadPage, r.TotalPage, r.Progress, formatSeconds(r.TotalReadingTime))
	}
	return tw.Flush()
}
