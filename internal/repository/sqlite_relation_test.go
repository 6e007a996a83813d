package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turrisxyz/openproject/internal/domain"
	"github.com/turrisxyz/openproject/internal/repository"
	"github.com/turrisxyz/openproject/internal/testutil"
)

func seedItems(t *testing.T, repo *repository.SQLiteWorkItemRepo, subjects ...string) []*domain.WorkItem {
	t.Helper()
	items := make([]*domain.WorkItem, 0, len(subjects))
	for _, s := range subjects {
		w := testutil.NewWorkItem(s)
		require.NoError(t, repo.Create(context.Background(), w))
		items = append(items, w)
	}
	return items
}

func TestRelationCreateAndList(t *testing.T) {
	database := testutil.NewTestDB(t)
	workItems := repository.NewSQLiteWorkItemRepo(database)
	relations := repository.NewSQLiteRelationRepo(database)
	ctx := context.Background()

	items := seedItems(t, workItems, "a", "b", "c")
	require.NoError(t, relations.Create(ctx, testutil.NewFollows(items[0].ID, items[1].ID)))
	require.NoError(t, relations.Create(ctx, testutil.NewFollows(items[1].ID, items[2].ID)))

	all, err := relations.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, rel := range all {
		assert.Equal(t, domain.RelationFollows, rel.Type)
	}
}

func TestRelationPredecessorsAndSuccessors(t *testing.T) {
	database := testutil.NewTestDB(t)
	workItems := repository.NewSQLiteWorkItemRepo(database)
	relations := repository.NewSQLiteRelationRepo(database)
	ctx := context.Background()

	items := seedItems(t, workItems, "a", "b", "c")
	require.NoError(t, relations.Create(ctx, testutil.NewFollows(items[0].ID, items[2].ID)))
	require.NoError(t, relations.Create(ctx, testutil.NewFollows(items[1].ID, items[2].ID)))

	preds, err := relations.ListPredecessors(ctx, items[2].ID)
	require.NoError(t, err)
	assert.Len(t, preds, 2)

	succs, err := relations.ListSuccessors(ctx, items[0].ID)
	require.NoError(t, err)
	require.Len(t, succs, 1)
	assert.Equal(t, items[2].ID, succs[0].SuccessorID)

	none, err := relations.ListSuccessors(ctx, items[2].ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRelationDelete(t *testing.T) {
	database := testutil.NewTestDB(t)
	workItems := repository.NewSQLiteWorkItemRepo(database)
	relations := repository.NewSQLiteRelationRepo(database)
	ctx := context.Background()

	items := seedItems(t, workItems, "a", "b")
	require.NoError(t, relations.Create(ctx, testutil.NewFollows(items[0].ID, items[1].ID)))
	require.NoError(t, relations.Delete(ctx, items[0].ID, items[1].ID, domain.RelationFollows))

	all, err := relations.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRelationRejectsUnknownType(t *testing.T) {
	database := testutil.NewTestDB(t)
	workItems := repository.NewSQLiteWorkItemRepo(database)
	relations := repository.NewSQLiteRelationRepo(database)
	ctx := context.Background()

	items := seedItems(t, workItems, "a", "b")
	err := relations.Create(ctx, &domain.Relation{
		PredecessorID: items[0].ID,
		SuccessorID:   items[1].ID,
		Type:          domain.RelationType("duplicates"),
	})
	assert.Error(t, err)
}

func TestRelationCascadesOnItemDelete(t *testing.T) {
	database := testutil.NewTestDB(t)
	workItems := repository.NewSQLiteWorkItemRepo(database)
	relations := repository.NewSQLiteRelationRepo(database)
	ctx := context.Background()

	items := seedItems(t, workItems, "a", "b")
	require.NoError(t, relations.Create(ctx, testutil.NewFollows(items[0].ID, items[1].ID)))
	require.NoError(t, workItems.Delete(ctx, items[0].ID))

	all, err := relations.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
