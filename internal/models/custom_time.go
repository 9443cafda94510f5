package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for price dates everywhere
const DateLayout = "2006-01-02"

// FlexibleDate is a date that unmarshals from either RFC3339 or "YYYY-MM-DD"
type FlexibleDate struct {
	time.Time
}

// ParseFlexibleDate accepts "YYYY-MM-DD" or a full RFC3339 timestamp and
// returns the calendar date at midnight UTC.
func ParseFlexibleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexibleDate) UnmarshalJSON(b []byte) error {
	t, err := ParseFlexibleDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	f.Time = t
	return nil
}

// MarshalJSON writes the date as "YYYY-MM-DD"
func (f FlexibleDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Format(DateLayout))
}
