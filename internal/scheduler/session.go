package scheduler

import (
	"time"

	"github.com/turrisxyz/openproject/internal/domain"
)

// DateSnapshot is an item's schedule as it stood at a known point in time.
// Rescheduling deltas are computed between two snapshots rather than against
// live entity state.
type DateSnapshot struct {
	StartDate *time.Time
	DueDate   *time.Time
}

func snapshotDates(w *domain.WorkItem) DateSnapshot {
	return DateSnapshot{
		StartDate: domain.CopyDate(w.StartDate),
		DueDate:   domain.CopyDate(w.DueDate),
	}
}

// Session records pre-edit schedules for one logical edit. Capture the items
// about to be edited before applying new values; Before and Moved then answer
// against that frozen state for the rest of the pass.
type Session struct {
	before map[string]DateSnapshot
}

// NewSession creates a session with the given items captured.
func NewSession(items ...*domain.WorkItem) *Session {
	s := &Session{before: make(map[string]DateSnapshot, len(items))}
	s.Capture(items...)
	return s
}

// Capture snapshots items not yet seen by this session. Items captured
// earlier keep their original snapshot.
func (s *Session) Capture(items ...*domain.WorkItem) {
	for _, w := range items {
		if _, ok := s.before[w.ID]; !ok {
			s.before[w.ID] = snapshotDates(w)
		}
	}
}

// Before returns the pre-edit snapshot for the given item, if captured.
func (s *Session) Before(id string) (DateSnapshot, bool) {
	snap, ok := s.before[id]
	return snap, ok
}

// Moved reports whether the item's current dates differ from its pre-edit
// snapshot. Items never captured are by definition unmoved.
func (s *Session) Moved(w *domain.WorkItem) bool {
	prev, ok := s.before[w.ID]
	if !ok {
		return false
	}
	return !domain.SameDate(prev.StartDate, w.StartDate) ||
		!domain.SameDate(prev.DueDate, w.DueDate)
}
