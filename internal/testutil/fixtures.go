package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/turrisxyz/openproject/internal/calendar"
	"github.com/turrisxyz/openproject/internal/domain"
)

// Date builds a UTC-midnight date, the only form schedule dates take.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type WorkItemOption func(*domain.WorkItem)

func WithStart(d time.Time) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.StartDate = domain.DatePtr(d)
	}
}

func WithDue(d time.Time) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.DueDate = domain.DatePtr(d)
	}
}

func WithDates(start, due time.Time) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.StartDate = domain.DatePtr(start)
		w.DueDate = domain.DatePtr(due)
	}
}

func WithParent(parentID string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.ParentID = &parentID
	}
}

func WithManualScheduling() WorkItemOption {
	return func(w *domain.WorkItem) {
		w.ScheduleManually = true
	}
}

func WithIgnoreNonWorkingDays() WorkItemOption {
	return func(w *domain.WorkItem) {
		w.IgnoreNonWorkingDays = true
	}
}

func WithDurationDays(days int) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.DurationDays = days
	}
}

// NewWorkItem builds a work item fixture. When both dates are set and no
// explicit duration was given, the duration is derived under the default
// calendar so the fixture satisfies the duration invariant out of the box.
func NewWorkItem(subject string, opts ...WorkItemOption) *domain.WorkItem {
	now := time.Now().UTC()
	w := &domain.WorkItem{
		ID:        uuid.New().String(),
		Subject:   subject,
		CreatedAt: now,
		UpdatedAt: now,
	}
	explicitDuration := false
	for _, opt := range opts {
		before := w.DurationDays
		opt(w)
		if w.DurationDays != before {
			explicitDuration = true
		}
	}
	if w.HasDates() && !explicitDuration {
		if days, err := calendar.Default().Duration(w, *w.StartDate, *w.DueDate); err == nil {
			w.DurationDays = days
		}
	}
	return w
}

// NewFollows builds a follows relation fixture.
func NewFollows(predecessorID, successorID string) *domain.Relation {
	return &domain.Relation{
		PredecessorID: predecessorID,
		SuccessorID:   successorID,
		Type:          domain.RelationFollows,
	}
}
