package service

import (
	"context"
	"fmt"
	"time"

	"github.com/turrisxyz/openproject/internal/calendar"
	"github.com/turrisxyz/openproject/internal/db"
	"github.com/turrisxyz/openproject/internal/domain"
	"github.com/turrisxyz/openproject/internal/graph"
	"github.com/turrisxyz/openproject/internal/repository"
	"github.com/turrisxyz/openproject/internal/scheduler"
)

type scheduleService struct {
	uow db.UnitOfWork
	cal *calendar.Calendar
}

func NewScheduleService(uow db.UnitOfWork, cal *calendar.Calendar) ScheduleService {
	return &scheduleService{uow: uow, cal: cal}
}

func (s *scheduleService) MoveDates(ctx context.Context, id string, start, due *time.Time) (*scheduler.Result, error) {
	var res *scheduler.Result
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLiteWorkItemRepo(tx)
		relations := repository.NewSQLiteRelationRepo(tx)

		w, err := items.GetByID(ctx, id)
		if err != nil {
			return err
		}

		session := scheduler.NewSession(w)
		w.StartDate = domain.CopyDate(start)
		w.DueDate = domain.CopyDate(due)
		if err := deriveDuration(s.cal, w); err != nil {
			return err
		}

		provider := graph.NewProvider(items, relations, s.cal)
		engine := scheduler.New(provider, s.cal, session, w)
		res, err = engine.Call(ctx, scheduler.AttrStartDate, scheduler.AttrDueDate)
		if err != nil {
			return err
		}
		return persistSchedule(ctx, items, res, true)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *scheduleService) Reparent(ctx context.Context, id string, parentID *string) (*scheduler.Result, error) {
	var res *scheduler.Result
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLiteWorkItemRepo(tx)
		relations := repository.NewSQLiteRelationRepo(tx)

		w, err := items.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if parentID != nil {
			if err := checkParent(ctx, items, w, *parentID); err != nil {
				return err
			}
		}
		formerParentID := w.ParentID

		session := scheduler.NewSession(w)
		w.ParentID = parentID

		provider := graph.NewProvider(items, relations, s.cal)
		engine := scheduler.New(provider, s.cal, session, w)
		res, err = engine.Call(ctx, scheduler.AttrParent)
		if err != nil {
			return err
		}
		if err := persistSchedule(ctx, items, res, true); err != nil {
			return err
		}

		// The subtree the item left still references the former parent's old
		// envelope; re-aggregate it and propagate from there.
		if formerParentID != nil && (parentID == nil || *parentID != *formerParentID) {
			return s.reaggregate(ctx, items, relations, *formerParentID, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *scheduleService) Reschedule(ctx context.Context, ids ...string) (*scheduler.Result, error) {
	var res *scheduler.Result
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLiteWorkItemRepo(tx)
		relations := repository.NewSQLiteRelationRepo(tx)

		seeds := make([]*domain.WorkItem, 0, len(ids))
		for _, id := range ids {
			w, err := items.GetByID(ctx, id)
			if err != nil {
				return err
			}
			seeds = append(seeds, w)
		}

		session := scheduler.NewSession(seeds...)
		provider := graph.NewProvider(items, relations, s.cal)
		engine := scheduler.New(provider, s.cal, session, seeds...)

		var err error
		res, err = engine.Call(ctx)
		if err != nil {
			return err
		}
		// Seeds were not edited; only side effects need persisting.
		return persistSchedule(ctx, items, res, false)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// reaggregate re-derives a former ancestor's dates from its remaining
// descendants and runs a propagation pass for that derived change. Appends
// its alterations to res.
func (s *scheduleService) reaggregate(ctx context.Context, items repository.WorkItemRepo,
	relations repository.RelationRepo, id string, res *scheduler.Result) error {

	w, err := items.GetByID(ctx, id)
	if err != nil {
		return err
	}

	provider := graph.NewProvider(items, relations, s.cal)
	start, due, hasDescendants, err := provider.Envelope(ctx, id)
	if err != nil {
		return err
	}
	if !hasDescendants {
		// Last child gone; the item keeps its dates and becomes directly
		// schedulable again.
		return nil
	}

	session := scheduler.NewSession(w)
	prev, _ := session.Before(w.ID)
	prevDuration := w.DurationDays
	w.StartDate = start
	w.DueDate = due
	if err := deriveDuration(s.cal, w); err != nil {
		return err
	}
	if !session.Moved(w) && prevDuration == w.DurationDays {
		return nil
	}
	res.Altered = append(res.Altered, scheduler.Alteration{Item: w, Previous: prev, PreviousDuration: prevDuration})

	engine := scheduler.New(provider, s.cal, session, w)
	derived, err := engine.Call(ctx, scheduler.AttrStartDate, scheduler.AttrDueDate)
	if err != nil {
		return err
	}
	res.Altered = append(res.Altered, derived.Altered...)
	return persistSchedule(ctx, items, derived, true)
}

// checkParent rejects hierarchy edits that would make an item its own
// ancestor.
func checkParent(ctx context.Context, items repository.WorkItemRepo, w *domain.WorkItem, parentID string) error {
	for cur := &parentID; cur != nil; {
		if *cur == w.ID {
			return fmt.Errorf("work item %s cannot become a descendant of itself", w.ID)
		}
		p, err := items.GetByID(ctx, *cur)
		if err != nil {
			return err
		}
		cur = p.ParentID
	}
	return nil
}

// persistSchedule writes every item touched by a propagation pass. Altered
// items are persisted always; the directly edited seeds only when
// includeEdited is set.
func persistSchedule(ctx context.Context, items repository.WorkItemRepo, res *scheduler.Result, includeEdited bool) error {
	now := time.Now().UTC()
	seen := make(map[string]bool)
	save := func(w *domain.WorkItem) error {
		if seen[w.ID] {
			return nil
		}
		seen[w.ID] = true
		w.UpdatedAt = now
		return items.Update(ctx, w)
	}

	if includeEdited {
		for _, w := range res.Edited {
			if err := save(w); err != nil {
				return err
			}
		}
	}
	for _, alt := range res.Altered {
		if err := save(alt.Item); err != nil {
			return err
		}
	}
	return nil
}
