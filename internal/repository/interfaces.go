package repository

import (
	"context"
	"errors"
	"time"

	"github.com/turrisxyz/openproject/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type WorkItemRepo interface {
	Create(ctx context.Context, w *domain.WorkItem) error
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	List(ctx context.Context) ([]*domain.WorkItem, error)
	ListChildren(ctx context.Context, parentID string) ([]*domain.WorkItem, error)
	Update(ctx context.Context, w *domain.WorkItem) error
	Delete(ctx context.Context, id string) error
}

type RelationRepo interface {
	Create(ctx context.Context, rel *domain.Relation) error
	Delete(ctx context.Context, predecessorID, successorID string, t domain.RelationType) error
	List(ctx context.Context) ([]domain.Relation, error)
	ListPredecessors(ctx context.Context, workItemID string) ([]domain.Relation, error)
	ListSuccessors(ctx context.Context, workItemID string) ([]domain.Relation, error)
}

type CalendarRepo interface {
	AddNonWorkingDay(ctx context.Context, d time.Time) error
	RemoveNonWorkingDay(ctx context.Context, d time.Time) error
	ListNonWorkingDays(ctx context.Context) ([]time.Time, error)
}
