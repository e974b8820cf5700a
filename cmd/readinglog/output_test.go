package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/booklens/booklens-server/internal/domain"
)

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0m", formatSeconds(0))
	assert.Equal(t, "45m", formatSeconds(2700))
	assert.Equal(t, "1h05m", formatSeconds(3900))
}

func TestValidateFormat(t *testing.T) {
	t.Cleanup(func() { outFormat = "human" })

	outFormat = "json"
	assert.NoError(t, validateFormat())

	outFormat = "yaml"
	assert.Error(t, validateFormat())
}

func TestToDayRow(t *testing.T) {
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	row := toDayRow(&domain.DaySummary{
		Date:      "2024-03-05",
		TotalTime: 2700,
		Sessions: []domain.CalendarSession{
			{BookID: 1, BookTitle: "Dune", BookAuthor: "Frank Herbert", PagesRead: 20, Duration: 1800, StartTime: start},
		},
	})

	assert.Equal(t, "2024-03-05", row.Date)
	assert.Len(t, row.Sessions, 1)
	assert.Equal(t, "2024-03-05T10:00:00Z", row.Sessions[0].StartTime)
	assert.Nil(t, row.Sessions[0].BookThumbnail)
}
