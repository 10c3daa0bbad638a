package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJPXIsTradingDay(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	cal := JPX{}

	cases := []struct {
		name string
		date time.Time
		want bool
	}{
		{"regular monday", time.Date(2026, 8, 31, 9, 0, 0, 0, jst), true},
		{"saturday", time.Date(2026, 9, 5, 9, 0, 0, 0, jst), false},
		{"sunday", time.Date(2026, 9, 6, 9, 0, 0, 0, jst), false},
		{"new year's day", time.Date(2026, 1, 1, 9, 0, 0, 0, jst), false},
		{"january 2nd", time.Date(2026, 1, 2, 9, 0, 0, 0, jst), false},
		{"january 3rd weekend", time.Date(2026, 1, 3, 9, 0, 0, 0, jst), false},
		{"first session of the year", time.Date(2026, 1, 5, 9, 0, 0, 0, jst), true},
		{"december 31st", time.Date(2026, 12, 31, 9, 0, 0, 0, jst), false},
		{"december 30th", time.Date(2026, 12, 30, 9, 0, 0, 0, jst), true},
		{"national holiday", time.Date(2026, 2, 11, 9, 0, 0, 0, jst), false},
		{"substitute holiday", time.Date(2026, 5, 6, 9, 0, 0, 0, jst), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, cal.IsTradingDay(c.date))
		})
	}
}
