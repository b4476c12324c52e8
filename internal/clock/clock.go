// Package clock provides an injectable time source and helpers for civil dates.
//
// A civil date is a time.Time at 00:00 UTC whose Y/M/D is the calendar date in
// the school's location. All date arithmetic in the domain uses civil dates so
// that comparisons never depend on the zone of the value.
package clock

import "time"

// Clock is a source of the current instant.
type Clock interface {
	Now() time.Time
}

// Real returns wall-clock time.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Date returns the civil date of t as seen in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate builds a civil date.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the civil date of c.Now() in loc.
func Today(c Clock, loc *time.Location) time.Time {
	return Date(c.Now().In(loc))
}

// AddDays shifts a civil date by n days.
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// MondayOf returns the Monday of the ISO week containing date.
func MondayOf(date time.Time) time.Time {
	return AddDays(Date(date), 1-ISOWeekday(date))
}

// At combines a civil date with a wall-clock time in loc.
func At(date time.Time, hour, minute int, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
}
