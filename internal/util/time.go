package util

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrInvalidPeriod is returned for a lookback period outside the supported set
var ErrInvalidPeriod = errors.New("invalid period")

// PeriodMax requests all available history
const PeriodMax = "max"

// lookbacks maps a period to its calendar offset (years, months)
var lookbacks = map[string][2]int{
	"1mo": {0, 1},
	"3mo": {0, 3},
	"6mo": {0, 6},
	"1y":  {1, 0},
	"2y":  {2, 0},
	"5y":  {5, 0},
}

// PeriodStart returns the first calendar date covered by period, counted back
// from asOf. The zero time is returned for "max".
func PeriodStart(period string, asOf time.Time) (time.Time, error) {
	if period == PeriodMax {
		return time.Time{}, nil
	}
	lb, ok := lookbacks[period]
	if !ok {
		return time.Time{}, fmt.Errorf("%w %q: expected one of 1mo, 3mo, 6mo, 1y, 2y, 5y, max", ErrInvalidPeriod, period)
	}
	day := TruncateToDate(asOf)
	return day.AddDate(-lb[0], -lb[1], 0), nil
}

// TruncateToDate drops the clock part of t, keeping its calendar date in UTC
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextMarketDate predicts the date of the next stock market update.
// It handles timezone conversion, business day logic.
// It returns the next valid market date (a weekday) at 4:30 PM New York time, in UTC.
func NextMarketDate(input time.Time) time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Errorf("Failed to load location 'America/New_York': %v. Falling back to UTC.", err)
		loc = time.UTC
	}
	nowET := input.In(loc)

	next := time.Date(nowET.Year(), nowET.Month(), nowET.Day(), 16, 30, 0, 0, loc)
	if nowET.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	for !IsWeekday(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.UTC()
}

// IsWeekday reports whether t falls Monday through Friday
func IsWeekday(t time.Time) bool {
	return t.Weekday() != time.Saturday && t.Weekday() != time.Sunday
}
