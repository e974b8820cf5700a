package main

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/booklens/booklens-server/internal/domain"
)

var (
	calendarYear  int
	calendarMonth int
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show reading totals per day for one month",
	Long:  "Show reading totals per day for one month. Defaults to the current month in the configured timezone.",
	Args:  cobra.NoArgs,
	RunE:  runCalendar,
}

var dayCmd = &cobra.Command{
	Use:   "day YYYY-MM-DD",
	Short: "Show every session that started on one date",
	Args:  cobra.ExactArgs(1),
	RunE:  runDay,
}

func init() {
	calendarCmd.Flags().IntVar(&calendarYear, "year", 0, "Year (default: current)")
	calendarCmd.Flags().IntVar(&calendarMonth, "month", 0, "Month 1-12 (default: current)")
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(dayCmd)
}

// sessionRow and dayRow mirror the HTTP calendar payload.
type sessionRow struct {
	BookID        int64   `json:"bookId"`
	BookTitle     string  `json:"bookTitle"`
	BookAuthor    string  `json:"bookAuthor"`
	BookThumbnail *string `json:"bookThumbnail"`
	PagesRead     int     `json:"pagesRead"`
	Duration      int64   `json:"duration"`
	StartTime     string  `json:"startTime"`
}

type dayRow struct {
	Date      string       `json:"date"`
	TotalTime int64        `json:"totalTime"`
	Sessions  []sessionRow `json:"sessions"`
}

func toDayRow(d *domain.DaySummary) dayRow {
	row := dayRow{Date: d.Date, TotalTime: d.TotalTime, Sessions: make([]sessionRow, 0, len(d.Sessions))}
	for _, s := range d.Sessions {
		row.Sessions = append(row.Sessions, sessionRow{
			BookID:        s.BookID,
			BookTitle:     s.BookTitle,
			BookAuthor:    s.BookAuthor,
			BookThumbnail: s.BookThumbnail,
			PagesRead:     s.PagesRead,
			Duration:      s.Duration,
			StartTime:     s.StartTime.UTC().Format(time.RFC3339),
		})
	}
	return row
}

func runCalendar(cmd *cobra.Command, _ []string) error {
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

	year, month := calendarYear, calendarMonth
	if year == 0 || month == 0 {
		cy, cm := a.calendar.CurrentMonth()
		if year == 0 {
			year = cy
		}
		if month == 0 {
			month = cm
		}
	}

	days, err := a.calendar.ByMonth(ctx, uid, year, month)
	if err != nil {
		return err
	}

	out := make(map[string]dayRow, len(days))
	for k, d := range days {
		out[k] = toDayRow(d)
	}

	if outFormat == "json" {
		return printJSON(out)
	}

	if len(out) == 0 {
		fmt.Printf("No reading in %04d-%02d.\n", year, month)
		return nil
	}

	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var total int64
	tw := newTable(os.Stdout)
	fmt.Fprintln(tw, "DATE\tSESSIONS\tTIME")
	for _, k := range keys {
		d := out[k]
		total += d.TotalTime
		fmt.Fprintf(tw, "%s\t%d\t%s\n", k, len(d.Sessions), formatSeconds(d.TotalTime))
	}
	fmt.Fprintf(tw, "total\t\t%s\n", formatSeconds(total))
	return tw.Flush()
}

func runDay(cmd *cobra.Command, args []string) error {
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

	day, err := a.calendar.ByDate(ctx, uid, args[0])
	if err != nil {
		return err
	}
	row := toDayRow(day)

	if outFormat == "json" {
		return printJSON(row)
	}

	fmt.Printf("%s  %s read\n", row.Date, formatSeconds(row.TotalTime))
	if len(row.Sessions) == 0 {
		return nil
	}

	tw := newTable(os.Stdout)
	fmt.Fprintln(tw, "START\tBOOK\tPAGES\tTIME")
	for _, s := range row.Sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.StartTime, s.BookTitle, s.PagesRead, formatSeconds(s.Duration))
	}
	return tw.Flush()
}
