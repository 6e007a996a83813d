// Package scheduler propagates schedule changes through a network of work
// items linked by hierarchy and follows relations. Editing an item's dates or
// parent triggers one propagation pass that re-derives the dates of every
// transitively dependent item, in dependency order, preserving durations.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/turrisxyz/openproject/internal/domain"
)

// ChangedAttribute names an edited aspect of a work item that can trigger
// propagation.
type ChangedAttribute string

const (
	AttrParent    ChangedAttribute = "parent"
	AttrStartDate ChangedAttribute = "start_date"
	AttrDueDate   ChangedAttribute = "due_date"
)

// Dependency is the per-item view the graph provider derives for each item
// visited during propagation.
type Dependency struct {
	// HasDescendants selects the aggregation path: items with descendants
	// mirror their descendants' envelope instead of following predecessors.
	HasDescendants bool
	// StartDate/DueDate hold the descendant envelope (min start, max due).
	// Meaningful only when HasDescendants.
	StartDate *time.Time
	DueDate   *time.Time
	// SoonestStart is the earliest date the item may start given its
	// predecessors, direct or inherited through ancestors. Nil without
	// predecessors.
	SoonestStart *time.Time
	// MovingPredecessors lists predecessors whose dates changed in the
	// current session, most binding first.
	MovingPredecessors []*domain.WorkItem
}

// GraphProvider discovers the items affected by an edit and their derived
// scheduling facts.
type GraphProvider interface {
	// InScheduleOrder visits every item transitively dependent on the seeds,
	// in an order where an item is visited after everything it depends on.
	// The dependency view is derived at visit time, so it reflects items
	// already rescheduled earlier in the walk. Seeds themselves and manually
	// scheduled items are not visited. A visit error stops the walk.
	InScheduleOrder(ctx context.Context, session *Session, seeds []*domain.WorkItem,
		visit func(item *domain.WorkItem, dep Dependency) error) error
	// SoonestStart returns the earliest permissible start date of the given
	// item as imposed by its predecessors, or nil when unconstrained.
	SoonestStart(ctx context.Context, itemID string) (*time.Time, error)
}

// DurationCalculator measures working-day durations under the item's calendar.
type DurationCalculator interface {
	Duration(item *domain.WorkItem, start, due time.Time) (int, error)
	DueDate(item *domain.WorkItem, start time.Time, days int) (time.Time, error)
}

// Alteration records one item whose schedule the pass changed.
type Alteration struct {
	Item             *domain.WorkItem
	Previous         DateSnapshot
	PreviousDuration int
}

// Result reports the outcome of one propagation pass: the items that were
// edited directly plus one entry per item altered as a side effect.
type Result struct {
	Edited  []*domain.WorkItem
	Altered []Alteration
}

// Scheduler runs one propagation pass over one consistent snapshot of the
// graph. It mutates item dates and durations in place and performs no
// persistence and no validation.
type Scheduler struct {
	graph   GraphProvider
	cal     DurationCalculator
	session *Session
	items   []*domain.WorkItem
}

// New creates a scheduler for the given edited items. The session must hold
// the items' pre-edit snapshots.
func New(graph GraphProvider, cal DurationCalculator, session *Session, items ...*domain.WorkItem) *Scheduler {
	return &Scheduler{graph: graph, cal: cal, session: session, items: items}
}

// Call runs the phases selected by the changed attributes and reports every
// altered item. An empty changed set defaults to {start_date, due_date}.
func (s *Scheduler) Call(ctx context.Context, changed ...ChangedAttribute) (*Result, error) {
	if len(changed) == 0 {
		changed = []ChangedAttribute{AttrStartDate, AttrDueDate}
	}
	set := make(map[ChangedAttribute]bool, len(changed))
	for _, c := range changed {
		set[c] = true
	}

	res := &Result{Edited: s.items}
	if set[AttrParent] {
		altered, err := s.inheritParentStart(ctx)
		if err != nil {
			return nil, err
		}
		res.Altered = append(res.Altered, altered...)
	}
	if set[AttrParent] || set[AttrStartDate] || set[AttrDueDate] {
		altered, err := s.scheduleFollowing(ctx)
		if err != nil {
			return nil, err
		}
		res.Altered = append(res.Altered, altered...)
	}
	return res, nil
}

// inheritParentStart gives newly parented, date-less edited items a start
// date inherited from their parent's soonest start. Due dates and durations
// are left for the propagation phase to reconcile.
func (s *Scheduler) inheritParentStart(ctx context.Context) ([]Alteration, error) {
	var altered []Alteration
	for _, w := range s.items {
		if w.StartDate != nil || w.ParentID == nil || w.ScheduleManually {
			continue
		}
		soonest, err := s.graph.SoonestStart(ctx, *w.ParentID)
		if err != nil {
			return nil, fmt.Errorf("resolving soonest start of parent %s: %w", *w.ParentID, err)
		}
		if soonest == nil {
			continue
		}
		prev := snapshotDates(w)
		w.StartDate = domain.CopyDate(soonest)
		altered = append(altered, Alteration{Item: w, Previous: prev, PreviousDuration: w.DurationDays})
	}
	return altered, nil
}

// scheduleFollowing walks the dependent set in the provider's order and
// reschedules each item from its descendants or predecessors.
func (s *Scheduler) scheduleFollowing(ctx context.Context) ([]Alteration, error) {
	var altered []Alteration
	err := s.graph.InScheduleOrder(ctx, s.session, s.items, func(w *domain.WorkItem, dep Dependency) error {
		if w.ScheduleManually {
			return nil
		}
		// Items rescheduled here act as moving predecessors for later
		// visits; their pre-pass dates must be on record.
		s.session.Capture(w)
		prev := snapshotDates(w)
		prevDuration := w.DurationDays

		var err error
		if dep.HasDescendants {
			err = s.scheduleByDescendants(w, dep)
		} else {
			err = s.scheduleByPredecessors(w, dep)
		}
		if err != nil {
			return err
		}

		if !domain.SameDate(prev.StartDate, w.StartDate) ||
			!domain.SameDate(prev.DueDate, w.DueDate) ||
			prevDuration != w.DurationDays {
			altered = append(altered, Alteration{Item: w, Previous: prev, PreviousDuration: prevDuration})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking schedule order: %w", err)
	}
	return altered, nil
}

// scheduleByDescendants mirrors the descendant envelope onto a parent item.
func (s *Scheduler) scheduleByDescendants(w *domain.WorkItem, dep Dependency) error {
	w.StartDate = domain.CopyDate(dep.StartDate)
	w.DueDate = domain.CopyDate(dep.DueDate)
	return s.recomputeDuration(w)
}

// scheduleByPredecessors derives a leaf item's dates from its predecessors:
// either snapping to the predecessor-imposed floor or carrying a moving
// predecessor's shift forward.
func (s *Scheduler) scheduleByPredecessors(w *domain.WorkItem, dep Dependency) error {
	delta := s.predecessorDelta(dep.MovingPredecessors)
	floor := dep.SoonestStart

	switch {
	case delta == 0 && floor != nil:
		return s.snapToFloor(w, *floor)
	case w.StartDate == nil && floor != nil:
		return s.fillFromFloor(w, *floor)
	case delta != 0:
		s.shift(w, floor, delta)
	}
	return nil
}

// predecessorDelta returns the signed day shift carried by the most binding
// moving predecessor: due-date movement when it has a due date, start-date
// movement otherwise.
func (s *Scheduler) predecessorDelta(moving []*domain.WorkItem) int {
	if len(moving) == 0 {
		return 0
	}
	p := moving[0]
	before, ok := s.session.Before(p.ID)
	if !ok {
		return 0
	}
	switch {
	case p.DueDate != nil:
		old := before.DueDate
		if old == nil {
			old = p.DueDate
		}
		return domain.DaysBetween(*old, *p.DueDate)
	case p.StartDate != nil:
		old := before.StartDate
		if old == nil {
			old = p.StartDate
		}
		return domain.DaysBetween(*old, *p.StartDate)
	default:
		return 0
	}
}

// snapToFloor aligns an item with an unmoved predecessor floor: the start
// never precedes the floor, the duration is preserved, and open-ended items
// stay open-ended.
func (s *Scheduler) snapToFloor(w *domain.WorkItem, floor time.Time) error {
	newStart := floor
	if w.StartDate != nil && w.StartDate.After(floor) {
		newStart = domain.NormalizeDate(*w.StartDate)
	}
	hadDue := w.DueDate != nil
	days := w.DurationDays

	w.StartDate = domain.DatePtr(newStart)
	if hadDue {
		if days > 0 {
			due, err := s.cal.DueDate(w, newStart, days)
			if err != nil {
				return fmt.Errorf("recomputing due date of %s: %w", w.ID, err)
			}
			w.DueDate = domain.DatePtr(due)
		} else if w.DueDate.Before(newStart) {
			// Duration unknown; at minimum the due date must not precede
			// the imposed start.
			w.DueDate = domain.DatePtr(newStart)
		}
	}
	return s.recomputeDuration(w)
}

// fillFromFloor gives a date-less item its first start date from the floor.
// A pre-existing due date earlier than the floor is pulled up to it.
func (s *Scheduler) fillFromFloor(w *domain.WorkItem, floor time.Time) error {
	w.StartDate = domain.DatePtr(floor)
	if w.DueDate != nil && w.DueDate.Before(floor) {
		w.DueDate = domain.DatePtr(floor)
	}
	return s.recomputeDuration(w)
}

// shift carries a moving predecessor's delta onto the item. A predecessor
// moving earlier pulls the item along but never below the floor; a
// predecessor moving later pushes only when the floor now exceeds the item's
// start. The date shape is preserved, so the duration needs no recompute.
func (s *Scheduler) shift(w *domain.WorkItem, floor *time.Time, delta int) {
	required := delta
	if required > 0 {
		required = 0
	}
	if floor != nil {
		base := *floor
		if w.StartDate != nil {
			base = *w.StartDate
		}
		if floorDelta := domain.DaysBetween(base, *floor); floorDelta > required {
			required = floorDelta
		}
	}
	if required == 0 {
		return
	}
	if w.StartDate != nil {
		w.StartDate = domain.DatePtr(domain.AddDays(*w.StartDate, required))
	}
	if w.DueDate != nil {
		w.DueDate = domain.DatePtr(domain.AddDays(*w.DueDate, required))
	}
}

// recomputeDuration re-derives the working-day duration from the current
// dates. Failure to obtain a duration aborts the whole pass; dates without a
// matching duration must never survive it.
func (s *Scheduler) recomputeDuration(w *domain.WorkItem) error {
	if w.StartDate == nil || w.DueDate == nil {
		w.DurationDays = 0
		return nil
	}
	days, err := s.cal.Duration(w, *w.StartDate, *w.DueDate)
	if err != nil {
		return fmt.Errorf("computing duration of %s: %w", w.ID, err)
	}
	w.DurationDays = days
	return nil
}
