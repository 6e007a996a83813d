package domain

import "time"

type WorkItem struct {
	ID      string
	Subject string

	// Schedule
	StartDate    *time.Time
	DueDate      *time.Time
	DurationDays int // working days spanned by (StartDate, DueDate); 0 when not derivable

	// Hierarchy
	ParentID *string

	// Scheduling mode
	ScheduleManually     bool
	IgnoreNonWorkingDays bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasDates reports whether both schedule dates are set.
func (w *WorkItem) HasDates() bool {
	return w.StartDate != nil && w.DueDate != nil
}
