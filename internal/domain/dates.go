package domain

import "time"

// DateLayout is the storage and display format for schedule dates.
const DateLayout = "2006-01-02"

// NormalizeDate truncates t to UTC midnight. Schedule dates carry no time
// component; every date entering the domain passes through here.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by the given number of calendar days.
func AddDays(d time.Time, days int) time.Time {
	return NormalizeDate(d).AddDate(0, 0, days)
}

// DaysBetween returns the signed calendar-day count from a to b.
func DaysBetween(a, b time.Time) int {
	return int(NormalizeDate(b).Sub(NormalizeDate(a)).Hours() / 24)
}

// SameDate reports whether two optional dates refer to the same day.
// Two nils are the same; a nil and a non-nil are not.
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return NormalizeDate(*a).Equal(NormalizeDate(*b))
}

// CopyDate returns an independent copy of an optional date.
func CopyDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := NormalizeDate(*t)
	return &d
}

// DatePtr returns a pointer to the normalized date.
func DatePtr(t time.Time) *time.Time {
	d := NormalizeDate(t)
	return &d
}
