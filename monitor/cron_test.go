package monitor

import (
	"testing"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/stretchr/testify/assert"
)

func Test_FindPrevious(t *testing.T) {
	loc := time.Local

	tests := []struct {
		name      string
		cron      string
		timestamp time.Time
		expected  time.Time
	}{
		{"daily", "30 23 * * *", time.Date(2019, 4, 25, 8, 42, 55, 0, loc), time.Date(2019, 4, 24, 23, 30, 0, 0, loc)},
		{"same day", "5 4 * * *", time.Date(2023, 11, 23, 10, 41, 30, 0, loc), time.Date(2023, 11, 23, 4, 5, 0, 0, loc)},
		{"week days", "30 23 * * MON-FRI", time.Date(2019, 4, 29, 8, 42, 55, 0, loc), time.Date(2019, 4, 26, 23, 30, 0, 0, loc)},
		{"periodic field", "5-55/15 * * * *", time.Date(2019, 4, 29, 8, 42, 55, 0, loc), time.Date(2019, 4, 29, 8, 35, 0, 0, loc)},
		{"monthly", "0 3 1 * *", time.Date(2022, 11, 7, 13, 55, 27, 0, loc), time.Date(2022, 11, 1, 3, 0, 0, 0, loc)},
		{"yearly", "0 0 1 1 *", time.Date(2022, 11, 7, 13, 55, 27, 0, loc), time.Date(2022, 1, 1, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindPrevious(cronexpr.MustParse(tt.cron), tt.timestamp)

			assert.True(t, result.Equal(tt.expected), "expected %s, got %s", tt.expected, result)
		})
	}
}

func Test_FindPrevious_withoutExpression(t *testing.T) {
	assert.True(t, FindPrevious(nil, time.Now()).IsZero())
}
