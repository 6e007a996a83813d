package service

import (
	"context"
	"time"

	"github.com/turrisxyz/openproject/internal/domain"
	"github.com/turrisxyz/openproject/internal/scheduler"
)

type WorkItemService interface {
	Create(ctx context.Context, w *domain.WorkItem) error
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	List(ctx context.Context) ([]*domain.WorkItem, error)
	Update(ctx context.Context, w *domain.WorkItem) error
	Delete(ctx context.Context, id string) error
}

type RelationService interface {
	// Follow creates a follows relation and reschedules the successor side.
	Follow(ctx context.Context, predecessorID, successorID string) (*scheduler.Result, error)
	// Link creates an informational relation. Follows relations go through
	// Follow so the schedule stays consistent.
	Link(ctx context.Context, predecessorID, successorID string, t domain.RelationType) error
	Unfollow(ctx context.Context, predecessorID, successorID string) error
	ListPredecessors(ctx context.Context, workItemID string) ([]domain.Relation, error)
	ListSuccessors(ctx context.Context, workItemID string) ([]domain.Relation, error)
	List(ctx context.Context) ([]domain.Relation, error)
}

// ScheduleService is the transaction boundary around the propagation engine:
// each method applies one logical edit, runs one propagation pass, and
// persists every altered item atomically.
type ScheduleService interface {
	MoveDates(ctx context.Context, id string, start, due *time.Time) (*scheduler.Result, error)
	Reparent(ctx context.Context, id string, parentID *string) (*scheduler.Result, error)
	Reschedule(ctx context.Context, ids ...string) (*scheduler.Result, error)
}

type CalendarService interface {
	AddNonWorkingDay(ctx context.Context, d time.Time) error
	RemoveNonWorkingDay(ctx context.Context, d time.Time) error
	ListNonWorkingDays(ctx context.Context) ([]time.Time, error)
}
