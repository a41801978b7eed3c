package domain

import "time"

// DateLayout is the wire format for travel and availability dates.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date. All date rules
// (travel date, availability window, cancellation cutoff) compare days.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a Day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}
