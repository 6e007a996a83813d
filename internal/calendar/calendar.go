// Package calendar answers working-day questions for schedule computation:
// how many working days a date range covers, and where a range of a given
// working-day length ends.
package calendar

import (
	"fmt"
	"time"

	"github.com/turrisxyz/openproject/internal/domain"
)

// Calendar describes which days count as working days. A day is non-working
// when its weekday is in the weekend set or its date was marked non-working
// explicitly. Work items with IgnoreNonWorkingDays treat every day as working.
type Calendar struct {
	weekend    map[time.Weekday]bool
	nonWorking map[string]bool
}

// Default returns a calendar with a Saturday/Sunday weekend and no extra
// non-working days.
func Default() *Calendar {
	return New([]time.Weekday{time.Saturday, time.Sunday}, nil)
}

// New builds a calendar from a weekend set and explicit non-working dates.
func New(weekend []time.Weekday, nonWorking []time.Time) *Calendar {
	c := &Calendar{
		weekend:    make(map[time.Weekday]bool, len(weekend)),
		nonWorking: make(map[string]bool, len(nonWorking)),
	}
	for _, wd := range weekend {
		c.weekend[wd] = true
	}
	for _, d := range nonWorking {
		c.MarkNonWorking(d)
	}
	return c
}

// MarkNonWorking adds a single non-working date.
func (c *Calendar) MarkNonWorking(d time.Time) {
	c.nonWorking[domain.NormalizeDate(d).Format(domain.DateLayout)] = true
}

// UnmarkNonWorking removes a previously marked non-working date.
func (c *Calendar) UnmarkNonWorking(d time.Time) {
	delete(c.nonWorking, domain.NormalizeDate(d).Format(domain.DateLayout))
}

// IsWorkingDay reports whether d counts as a working day for the given item.
func (c *Calendar) IsWorkingDay(item *domain.WorkItem, d time.Time) bool {
	if item != nil && item.IgnoreNonWorkingDays {
		return true
	}
	d = domain.NormalizeDate(d)
	if c.weekend[d.Weekday()] {
		return false
	}
	return !c.nonWorking[d.Format(domain.DateLayout)]
}

// Duration returns the inclusive working-day count between start and due for
// the given item. A range consisting only of non-working days has duration 0.
func (c *Calendar) Duration(item *domain.WorkItem, start, due time.Time) (int, error) {
	start = domain.NormalizeDate(start)
	due = domain.NormalizeDate(due)
	if due.Before(start) {
		return 0, fmt.Errorf("due date %s precedes start date %s",
			due.Format(domain.DateLayout), start.Format(domain.DateLayout))
	}

	days := 0
	for d := start; !d.After(due); d = domain.AddDays(d, 1) {
		if c.IsWorkingDay(item, d) {
			days++
		}
	}
	return days, nil
}

// DueDate returns the date on which a range starting at start reaches the
// given working-day count, counting start itself when it is a working day.
func (c *Calendar) DueDate(item *domain.WorkItem, start time.Time, days int) (time.Time, error) {
	if days < 1 {
		return time.Time{}, fmt.Errorf("duration must cover at least one day, got %d", days)
	}

	d := domain.NormalizeDate(start)
	remaining := days
	for {
		if c.IsWorkingDay(item, d) {
			remaining--
			if remaining == 0 {
				return d, nil
			}
		}
		d = domain.AddDays(d, 1)
	}
}

// SoonestWorkingDay rolls d forward to the next day that counts as working
// for the given item. d itself is returned when it is already working.
func (c *Calendar) SoonestWorkingDay(item *domain.WorkItem, d time.Time) time.Time {
	d = domain.NormalizeDate(d)
	for !c.IsWorkingDay(item, d) {
		d = domain.AddDays(d, 1)
	}
	return d
}
