package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turrisxyz/openproject/internal/domain"
	"github.com/turrisxyz/openproject/internal/testutil"
)

func TestFollow_SnapsSuccessorBehindPredecessor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.add(t, "a", testutil.WithDates(testutil.Date(2024, 3, 4), testutil.Date(2024, 3, 8)))
	b := e.add(t, "b", testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 3)))

	res, err := e.follows.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, res.Altered, 1)

	gotB := e.reload(t, b.ID)
	assert.Equal(t, testutil.Date(2024, 3, 9), *gotB.StartDate)
	assert.Equal(t, testutil.Date(2024, 3, 11), *gotB.DueDate)
	assert.Equal(t, 3, gotB.DurationDays)

	rels, err := e.follows.ListPredecessors(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, a.ID, rels[0].PredecessorID)
}

func TestFollow_SuccessorWithSlackUntouched(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.add(t, "a", testutil.WithDates(testutil.Date(2024, 3, 4), testutil.Date(2024, 3, 8)))
	b := e.add(t, "b", testutil.WithDates(testutil.Date(2024, 3, 20), testutil.Date(2024, 3, 22)))

	res, err := e.follows.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Altered)

	gotB := e.reload(t, b.ID)
	assert.Equal(t, testutil.Date(2024, 3, 20), *gotB.StartDate)
}

func TestFollow_SelfRejected(t *testing.T) {
	e := newEnv(t)
	a := e.add(t, "a")

	_, err := e.follows.Follow(context.Background(), a.ID, a.ID)
	assert.ErrorContains(t, err, "cannot follow itself")
}

func TestFollow_ReverseOfExistingRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.add(t, "a")
	b := e.add(t, "b")
	e.follow(t, a, b)

	_, err := e.follows.Follow(ctx, b.ID, a.ID)
	assert.ErrorContains(t, err, "cycle")
}

func TestFollow_TransitiveCycleRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.add(t, "a")
	b := e.add(t, "b")
	c := e.add(t, "c")
	e.follow(t, a, b)
	e.follow(t, b, c)

	_, err := e.follows.Follow(ctx, c.ID, a.ID)
	assert.ErrorContains(t, err, "cycle")
}

func TestFollow_AncestorLineRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.add(t, "p")
	c := e.add(t, "c", testutil.WithParent(p.ID))

	_, err := e.follows.Follow(ctx, p.ID, c.ID)
	assert.ErrorContains(t, err, "ancestor")

	_, err = e.follows.Follow(ctx, c.ID, p.ID)
	assert.ErrorContains(t, err, "ancestor")
}

func TestFollow_UnknownItems(t *testing.T) {
	e := newEnv(t)
	a := e.add(t, "a")

	_, err := e.follows.Follow(context.Background(), a.ID, "missing")
	assert.Error(t, err)
	_, err = e.follows.Follow(context.Background(), "missing", a.ID)
	assert.Error(t, err)
}

func TestLink_InformationalRelationDoesNotReschedule(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.add(t, "a", testutil.WithDates(testutil.Date(2024, 3, 4), testutil.Date(2024, 3, 8)))
	b := e.add(t, "b", testutil.WithDates(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 3)))

	require.NoError(t, e.follows.Link(ctx, a.ID, b.ID, domain.RelationBlocks))

	gotB := e.reload(t, b.ID)
	assert.Equal(t, testutil.Date(2024, 3, 1), *gotB.StartDate, "only follows relations constrain dates")

	rels, err := e.follows.List(ctx)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, domain.RelationBlocks, rels[0].Type)
}

func TestLink_UnknownTypeRejected(t *testing.T) {
	e := newEnv(t)
	a := e.add(t, "a")
	b := e.add(t, "b")

	err := e.follows.Link(context.Background(), a.ID, b.ID, "duplicates")
	assert.ErrorContains(t, err, "unknown relation type")
}

func TestUnfollow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.add(t, "a")
	b := e.add(t, "b")
	e.follow(t, a, b)

	require.NoError(t, e.follows.Unfollow(ctx, a.ID, b.ID))

	rels, err := e.follows.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rels)
}
