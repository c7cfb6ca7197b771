// Package date parses and formats transaction timestamps and provides the
// UTC calendar month used by the monthly reports.
package date

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO-8601 layout timestamps are persisted with (always UTC,
// millisecond precision).
const Layout = "2006-01-02T15:04:05.000Z07:00"

// readLayouts are tried in order. Layouts without a zone are read in the
// caller's location.
var readLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2", // Permissive read date format (allows single-digit month/day).
}

// Parse parses a timestamp. Strings without a zone are interpreted in the
// local time zone, the way a person types a date.
func Parse(str string) (time.Time, error) {
	return ParseIn(str, time.Local)
}

// ParseIn is like Parse but interprets zone-less strings in loc.
func ParseIn(str string, loc *time.Location) (time.Time, error) {
	str = strings.TrimSpace(str)
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, str, loc); err == nil {
			return Truncate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q want ISO-8601 like %q or %q", str, "2006-01-02T15:04", "2006-01-02")
}

// MustParse is like Parse but panics on error.
func MustParse(str string) time.Time {
	t, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// Truncate drops what Layout cannot represent, so that a timestamp compares
// equal to itself once persisted and read back.
func Truncate(t time.Time) time.Time { return t.Truncate(time.Millisecond) }

// Format formats t in the persisted layout.
func Format(t time.Time) string { return t.UTC().Format(Layout) }

// Month is a calendar month in UTC.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the UTC calendar month containing t.
func MonthOf(t time.Time) Month {
	y, m, _ := t.UTC().Date()
	return Month{Year: y, Month: m}
}

// Start is the first instant of the month.
func (m Month) Start() time.Time { return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC) }

// End is the first instant of the next month.
func (m Month) End() time.Time { return m.Start().AddDate(0, 1, 0) }

// Contains reports whether t falls within the month, in UTC.
func (m Month) Contains(t time.Time) bool { return MonthOf(t) == m }

// Next returns the following month.
func (m Month) Next() Month { return MonthOf(m.End()) }

func (m Month) String() string { return m.Start().Format("2006-01") }
