package service

import (
	"context"
	"time"

	"github.com/turrisxyz/openproject/internal/calendar"
	"github.com/turrisxyz/openproject/internal/repository"
)

type calendarService struct {
	days repository.CalendarRepo
	cal  *calendar.Calendar
}

// NewCalendarService manages calendar exceptions, keeping the in-process
// calendar in sync with the stored set.
func NewCalendarService(days repository.CalendarRepo, cal *calendar.Calendar) CalendarService {
	return &calendarService{days: days, cal: cal}
}

func (s *calendarService) AddNonWorkingDay(ctx context.Context, d time.Time) error {
	if err := s.days.AddNonWorkingDay(ctx, d); err != nil {
		return err
	}
	s.cal.MarkNonWorking(d)
	return nil
}

func (s *calendarService) RemoveNonWorkingDay(ctx context.Context, d time.Time) error {
	if err := s.days.RemoveNonWorkingDay(ctx, d); err != nil {
		return err
	}
	s.cal.UnmarkNonWorking(d)
	return nil
}

func (s *calendarService) ListNonWorkingDays(ctx context.Context) ([]time.Time, error) {
	return s.days.ListNonWorkingDays(ctx)
}
