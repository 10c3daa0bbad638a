package calendar

import "time"

// Calendar answers whether the market trades on a given date.
type Calendar interface {
	IsTradingDay(t time.Time) bool
}

// JPX models the Tokyo Stock Exchange schedule: closed on weekends, national
// holidays and the exchange's year-end break (Dec 31 through Jan 3).
type JPX struct{}

// National holidays, including observed substitutes. Extend when new years
// are published.
var jpxHolidays = map[string]struct{}{
	// 2025
	"2025-01-01": {}, "2025-01-13": {}, "2025-02-11": {}, "2025-02-23": {},
	"2025-02-24": {}, "2025-03-20": {}, "2025-04-29": {}, "2025-05-03": {},
	"2025-05-04": {}, "2025-05-05": {}, "2025-05-06": {}, "2025-07-21": {},
	"2025-08-11": {}, "2025-09-15": {}, "2025-09-23": {}, "2025-10-13": {},
	"2025-11-03": {}, "2025-11-23": {}, "2025-11-24": {},
	// 2026
	"2026-01-01": {}, "2026-01-12": {}, "2026-02-11": {}, "2026-02-23": {},
	"2026-03-20": {}, "2026-04-29": {}, "2026-05-03": {}, "2026-05-04": {},
	"2026-05-05": {}, "2026-05-06": {}, "2026-07-20": {}, "2026-08-11": {},
	"2026-09-21": {}, "2026-09-22": {}, "2026-09-23": {}, "2026-10-12": {},
	"2026-11-03": {}, "2026-11-23": {},
	// 2027
	"2027-01-01": {}, "2027-01-11": {}, "2027-02-11": {}, "2027-02-23": {},
	"2027-03-22": {}, "2027-04-29": {}, "2027-05-03": {}, "2027-05-04": {},
	"2027-05-05": {}, "2027-07-19": {}, "2027-08-11": {}, "2027-09-20": {},
	"2027-09-23": {}, "2027-10-11": {}, "2027-11-03": {}, "2027-11-23": {},
}

func (JPX) IsTradingDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if t.Month() == time.December && t.Day() == 31 {
		return false
	}
	if t.Month() == time.January && t.Day() <= 3 {
		return false
	}
	_, holiday := jpxHolidays[t.Format("2006-01-02")]
	return !holiday
}
