package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turrisxyz/openproject/internal/calendar"
	"github.com/turrisxyz/openproject/internal/domain"
	"github.com/turrisxyz/openproject/internal/repository"
	"github.com/turrisxyz/openproject/internal/service"
	"github.com/turrisxyz/openproject/internal/testutil"
)

type env struct {
	cal       *calendar.Calendar
	workItems *repository.SQLiteWorkItemRepo
	relations *repository.SQLiteRelationRepo
	schedule  service.ScheduleService
	follows   service.RelationService
	items     service.WorkItemService
	calendar  service.CalendarService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	database := testutil.NewTestDB(t)
	cal := calendar.Default()
	uow := testutil.NewTestUoW(database)
	workItems := repository.NewSQLiteWorkItemRepo(database)
	relations := repository.NewSQLiteRelationRepo(database)
	return &env{
		cal:       cal,
		workItems: workItems,
		relations: relations,
		schedule:  service.NewScheduleService(uow, cal),
		follows:   service.NewRelationService(relations, uow, cal),
		items:     service.NewWorkItemService(workItems, cal),
		calendar:  service.NewCalendarService(repository.NewSQLiteCalendarRepo(database), cal),
	}
}

func (e *env) add(t *testing.T, subject string, opts ...testutil.WorkItemOption) *domain.WorkItem {
	t.Helper()
	opts = append([]testutil.WorkItemOption{testutil.WithIgnoreNonWorkingDays()}, opts...)
	w := testutil.NewWorkItem(subject, opts...)
	require.NoError(t, e.workItems.Create(context.Background(), w))
	return w
}

func (e *env) follow(t *testing.T, pred, succ *domain.WorkItem) {
	t.Helper()
	require.NoError(t, e.relations.Create(context.Background(), testutil.NewFollows(pred.ID, succ.ID)))
}

func (e *env) reload(t *testing.T, id string) *domain.WorkItem {
	t.Helper()
	w, err := e.workItems.GetByID(context.Background(), id)
	require.NoError(t, err)
	return w
}

func TestMoveDates_PersistsEditAndDuration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	w := e.add(t, "w", testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 4)))

	res, err := e.schedule.MoveDates(ctx, w.ID,
		domain.DatePtr(testutil.Date(2024, 3, 11)), domain.DatePtr(testutil.Date(2024, 3, 15)))
	require.NoError(t, err)
	assert.Empty(t, res.Altered)

	got := e.reload(t, w.ID)
	assert.Equal(t, testutil.Date(2024, 3, 11), *got.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 15), *got.DueDate)
	assert.Equal(t, 5, got.DurationDays)
}

func TestMoveDates_ShiftsTightChain(t *testing.T) {
	// a -> b -> c back to back: moving a four days later carries the whole
	// chain along and the shifts land in the database.
	e := newEnv(t)
	ctx := context.Background()
	a := e.add(t, "a", testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 4)))
	b := e.add(t, "b", testutil.WithDates(testutil.Date(2024, 3, 5), testutil.Date(2024, 3, 7)))
	c := e.add(t, "c", testutil.WithDates(testutil.Date(2024, 3, 8), testutil.Date(2024, 3, 10)))
	e.follow(t, a, b)
	e.follow(t, b, c)

	res, err := e.schedule.MoveDates(ctx, a.ID,
		domain.DatePtr(testutil.Date(2024, 3, 5)), domain.DatePtr(testutil.Date(2024, 3, 8)))
	require.NoError(t, err)
	assert.Len(t, res.Altered, 2)

	gotB := e.reload(t, b.ID)
	assert.Equal(t, testutil.Date(2024, 3, 9), *gotB.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 11), *gotB.DueDate)
	assert.Equal(t, 3, gotB.DurationDays)

	gotC := e.reload(t, c.ID)
	assert.Equal(t, testutil.Date(2024, 3, 12), *gotC.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 14), *gotC.DueDate)
	assert.Equal(t, 3, gotC.DurationDays)
}

func TestMoveDates_UpdatesParentEnvelope(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	parent := e.add(t, "parent", testutil.WithDates(testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 5)))
	child := e.add(t, "child", testutil.WithParent(parent.ID),
		testutil.WithDates(testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 5)))

	_, err := e.schedule.MoveDates(ctx, child.ID,
		domain.DatePtr(testutil.Date(2024, 1, 3)), domain.DatePtr(testutil.Date(2024, 1, 9)))
	require.NoError(t, err)

	got := e.reload(t, parent.ID)
	assert.Equal(t, testutil.Date(2024, 1, 3), *got.StartDate)
	assert.Equal(t, testutil.Date(2024, 1, 9), *got.DueDate)
	assert.Equal(t, 7, got.DurationDays)
}

func TestMoveDates_ReaggregatesThroughManualParent(t *testing.T) {
	// The manual parent keeps its own dates, but the grandparent above it
	// still tracks the full descendant envelope when the child moves.
	e := newEnv(t)
	ctx := context.Background()
	grandparent := e.add(t, "grandparent",
		testutil.WithDates(testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 10)))
	parent := e.add(t, "parent", testutil.WithManualScheduling(),
		testutil.WithParent(grandparent.ID),
		testutil.WithDates(testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 10)))
	child := e.add(t, "child", testutil.WithParent(parent.ID),
		testutil.WithDates(testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 5)))

	_, err := e.schedule.MoveDates(ctx, child.ID,
		domain.DatePtr(testutil.Date(2024, 1, 15)), domain.DatePtr(testutil.Date(2024, 1, 20)))
	require.NoError(t, err)

	got := e.reload(t, grandparent.ID)
	assert.Equal(t, testutil.Date(2024, 1, 1), *got.StartDate)
	assert.Equal(t, testutil.Date(2024, 1, 20), *got.DueDate)

	gotParent := e.reload(t, parent.ID)
	assert.Equal(t, testutil.Date(2024, 1, 10), *gotParent.DueDate, "the manual parent itself stays put")
}

func TestMoveDates_UnknownItem(t *testing.T) {
	e := newEnv(t)
	_, err := e.schedule.MoveDates(context.Background(), "missing", nil, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReparent_InheritsStartFromParentFloor(t *testing.T) {
	// parent follows x, so an adopted date-less item starts the day after x
	// finishes, and the parent's envelope follows suit.
	e := newEnv(t)
	ctx := context.Background()
	x := e.add(t, "x", testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 4)))
	parent := e.add(t, "parent")
	item := e.add(t, "item")
	e.follow(t, x, parent)

	res, err := e.schedule.Reparent(ctx, item.ID, &parent.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Altered)

	gotItem := e.reload(t, item.ID)
	require.NotNil(t, gotItem.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 5), *gotItem.StartDate)
	require.NotNil(t, gotItem.ParentID)
	assert.Equal(t, parent.ID, *gotItem.ParentID)

	gotParent := e.reload(t, parent.ID)
	require.NotNil(t, gotParent.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 5), *gotParent.StartDate)
}

func TestReparent_ReaggregatesFormerParent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	parent := e.add(t, "parent", testutil.WithDates(testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 12)))
	e.add(t, "c1", testutil.WithParent(parent.ID),
		testutil.WithDates(testutil.Date(2024, 1, 1), testutil.Date(2024, 1, 3)))
	c2 := e.add(t, "c2", testutil.WithParent(parent.ID),
		testutil.WithDates(testutil.Date(2024, 1, 10), testutil.Date(2024, 1, 12)))

	_, err := e.schedule.Reparent(ctx, c2.ID, nil)
	require.NoError(t, err)

	gotParent := e.reload(t, parent.ID)
	assert.Equal(t, testutil.Date(2024, 1, 1), *gotParent.StartDate)
	assert.Equal(t, testutil.Date(2024, 1, 3), *gotParent.DueDate)
	assert.Equal(t, 3, gotParent.DurationDays)

	gotC2 := e.reload(t, c2.ID)
	assert.Nil(t, gotC2.ParentID)
	assert.Equal(t, testutil.Date(2024, 1, 10), *gotC2.StartDate, "the moved item keeps its own dates")
}

func TestReparent_RejectsOwnDescendant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.add(t, "p")
	c := e.add(t, "c", testutil.WithParent(p.ID))

	_, err := e.schedule.Reparent(ctx, p.ID, &c.ID)
	assert.ErrorContains(t, err, "descendant of itself")
}

func TestReschedule_AlignsSuccessorToFloor(t *testing.T) {
	// b overlaps its predecessor; rescheduling from a snaps b behind it.
	e := newEnv(t)
	ctx := context.Background()
	a := e.add(t, "a", testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 4)))
	b := e.add(t, "b", testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 2)))
	e.follow(t, a, b)

	res, err := e.schedule.Reschedule(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, res.Altered, 1)

	gotB := e.reload(t, b.ID)
	assert.Equal(t, testutil.Date(2024, 3, 5), *gotB.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 6), *gotB.DueDate)
	assert.Equal(t, 2, gotB.DurationDays)
}

func TestReschedule_ConsistentGraphIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.add(t, "a", testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 4)))
	b := e.add(t, "b", testutil.WithDates(testutil.Date(2024, 3, 5), testutil.Date(2024, 3, 7)))
	e.follow(t, a, b)

	res, err := e.schedule.Reschedule(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Altered)

	// A second pass over the already-consistent graph changes nothing either.
	res, err = e.schedule.Reschedule(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Altered)
}

func TestReschedule_LeavesManualItemsAlone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.add(t, "a", testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 4)))
	b := e.add(t, "b", testutil.WithManualScheduling(),
		testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 2)))
	e.follow(t, a, b)

	res, err := e.schedule.Reschedule(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Altered)

	gotB := e.reload(t, b.ID)
	assert.Equal(t, testutil.Date(2024, 3, 1), *gotB.StartDate)
}
