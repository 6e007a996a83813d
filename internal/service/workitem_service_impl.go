package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turrisxyz/openproject/internal/calendar"
	"github.com/turrisxyz/openproject/internal/domain"
	"github.com/turrisxyz/openproject/internal/repository"
)

type workItemService struct {
	workItems repository.WorkItemRepo
	cal       *calendar.Calendar
}

func NewWorkItemService(workItems repository.WorkItemRepo, cal *calendar.Calendar) WorkItemService {
	return &workItemService{workItems: workItems, cal: cal}
}

func (s *workItemService) Create(ctx context.Context, w *domain.WorkItem) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	w.StartDate = domain.CopyDate(w.StartDate)
	w.DueDate = domain.CopyDate(w.DueDate)
	if err := deriveDuration(s.cal, w); err != nil {
		return err
	}
	return s.workItems.Create(ctx, w)
}

func (s *workItemService) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	return s.workItems.GetByID(ctx, id)
}

func (s *workItemService) List(ctx context.Context) ([]*domain.WorkItem, error) {
	return s.workItems.List(ctx)
}

func (s *workItemService) Update(ctx context.Context, w *domain.WorkItem) error {
	w.UpdatedAt = time.Now().UTC()
	if err := deriveDuration(s.cal, w); err != nil {
		return err
	}
	return s.workItems.Update(ctx, w)
}

func (s *workItemService) Delete(ctx context.Context, id string) error {
	return s.workItems.Delete(ctx, id)
}

// deriveDuration recomputes the working-day duration from the item's current
// dates, clearing it when either date is missing.
func deriveDuration(cal *calendar.Calendar, w *domain.WorkItem) error {
	if !w.HasDates() {
		w.DurationDays = 0
		return nil
	}
	days, err := cal.Duration(w, *w.StartDate, *w.DueDate)
	if err != nil {
		return fmt.Errorf("computing duration of %s: %w", w.ID, err)
	}
	w.DurationDays = days
	return nil
}
