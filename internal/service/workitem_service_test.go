package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turrisxyz/openproject/internal/domain"
	"github.com/turrisxyz/openproject/internal/testutil"
)

func TestWorkItemService_CreateAssignsIDAndDuration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// 2024-03-04 is a Monday; the default calendar counts five working days
	// through Friday.
	w := &domain.WorkItem{
		Subject:   "Review",
		StartDate: domain.DatePtr(testutil.Date(2024, 3, 4)),
		DueDate:   domain.DatePtr(testutil.Date(2024, 3, 8)),
	}
	require.NoError(t, e.items.Create(ctx, w))
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, 5, w.DurationDays)

	got, err := e.items.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Review", got.Subject)
	assert.Equal(t, 5, got.DurationDays)
}

func TestWorkItemService_CreateRejectsInvertedDates(t *testing.T) {
	e := newEnv(t)
	w := &domain.WorkItem{
		Subject:   "Backwards",
		StartDate: domain.DatePtr(testutil.Date(2024, 3, 8)),
		DueDate:   domain.DatePtr(testutil.Date(2024, 3, 4)),
	}
	err := e.items.Create(context.Background(), w)
	assert.ErrorContains(t, err, "precedes")
}

func TestWorkItemService_UpdateRederivesDuration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	w := e.add(t, "w", testutil.WithDates(testutil.Date(2024, 3, 4), testutil.Date(2024, 3, 5)))

	w.DueDate = domain.DatePtr(testutil.Date(2024, 3, 8))
	require.NoError(t, e.items.Update(ctx, w))

	got := e.reload(t, w.ID)
	assert.Equal(t, 5, got.DurationDays)
}

func TestWorkItemService_ClearingDatesClearsDuration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	w := e.add(t, "w", testutil.WithDates(testutil.Date(2024, 3, 4), testutil.Date(2024, 3, 5)))

	w.StartDate = nil
	w.DueDate = nil
	require.NoError(t, e.items.Update(ctx, w))

	got := e.reload(t, w.ID)
	assert.Nil(t, got.StartDate)
	assert.Zero(t, got.DurationDays)
}
