package repository

import (
	"context"
	"testing"
	"time"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func newItem(user uuid.UUID, at time.Time) *entity.FeedItem {
	return &entity.FeedItem{UserID: user, Created: at, Modified: at}
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	repo := NewFeedRepository(testutil.NewDB(t))
	ctx := context.Background()
	now := time.Now().UTC()
	actID := uuid.New()

	first := newItem(uuid.New(), now)
	first.ActID = ptr(actID)
	got1, created, err := repo.FindOrCreate(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, got1.Count)

	second := newItem(first.UserID, now)
	second.ActID = ptr(actID)
	got2, created, err := repo.FindOrCreate(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, got1.ID, got2.ID)

	items, err := repo.Query(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFindOrCreateMatchesNullsExactly(t *testing.T) {
	repo := NewFeedRepository(testutil.NewDB(t))
	ctx := context.Background()
	now := time.Now().UTC()
	id := uuid.New()

	byComment := newItem(uuid.New(), now)
	byComment.CommentID = ptr(id)
	_, created, err := repo.FindOrCreate(ctx, byComment)
	require.NoError(t, err)
	require.True(t, created)

	// same id but as a testimony is a different identity
	byTestimony := newItem(uuid.New(), now)
	byTestimony.TestimonyID = ptr(id)
	item, created, err := repo.FindOrCreate(ctx, byTestimony)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, byComment.ID, item.ID)
}

func TestFindStreakAndIncrement(t *testing.T) {
	repo := NewFeedRepository(testutil.NewDB(t))
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	user, deed := uuid.New(), uuid.New()

	item := newItem(user, start)
	item.ActID = ptr(uuid.New())
	item.Target.Deed = ptr(deed)
	require.NoError(t, repo.Create(ctx, item))

	bulk := newItem(user, start.Add(time.Minute))
	bulk.Bulk = true
	bulk.Count = 5
	bulk.Target.Deed = ptr(deed)
	require.NoError(t, repo.Create(ctx, bulk))

	found, err := repo.FindStreak(ctx, user, deed, start.Add(-5*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, item.ID, found.ID, "bulk items never take part in a streak")

	ok, err := repo.Increment(ctx, found.ID, start.Add(-5*time.Minute), start.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Count)
	assert.True(t, reloaded.Modified.Equal(start.Add(2*time.Minute)))

	none, err := repo.FindStreak(ctx, user, deed, start.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, none)

	ok, err = repo.Increment(ctx, item.ID, start.Add(10*time.Minute), start.Add(11*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok, "an expired item is not incremented")
}

func TestDeleteBySource(t *testing.T) {
	repo := NewFeedRepository(testutil.NewDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	act := newItem(uuid.New(), now)
	act.ActID = ptr(uuid.New())
	require.NoError(t, repo.Create(ctx, act))
	comment := newItem(uuid.New(), now)
	comment.CommentID = ptr(uuid.New())
	require.NoError(t, repo.Create(ctx, comment))

	n, err := repo.DeleteBySource(ctx, *comment.CommentID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteBySource(ctx, *comment.CommentID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	items, err := repo.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, act.ID, items[0].ID)
}

func TestQueryCursorsAndFilters(t *testing.T) {
	repo := NewFeedRepository(testutil.NewDB(t))
	ctx := context.Background()
	now := time.Now().UTC()
	deed, group := uuid.New(), uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		item := newItem(uuid.New(), now)
		item.ActID = ptr(uuid.New())
		switch i {
		case 0, 1:
			item.Target.Deed = ptr(deed)
		case 2:
			item.Target.Group = ptr(group)
		}
		require.NoError(t, repo.Create(ctx, item))
		ids = append(ids, item.ID)
	}

	idsOf := func(items []entity.FeedItem) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(items))
		for _, it := range items {
			out = append(out, it.ID)
		}
		return out
	}

	after, err := repo.Query(ctx, Query{After: &ids[1]})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[4], ids[3], ids[2]}, idsOf(after))

	before, err := repo.Query(ctx, Query{Before: &ids[3]})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0]}, idsOf(before))

	byDeed, err := repo.Query(ctx, Query{Filters: []Filter{{Column: "target_deed", IDs: []uuid.UUID{deed}}}})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[1], ids[0]}, idsOf(byDeed))

	either, err := repo.Query(ctx, Query{Or: true, Filters: []Filter{
		{Column: "target_deed", IDs: []uuid.UUID{deed}},
		{Column: "target_group", IDs: []uuid.UUID{group}},
	}})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0]}, idsOf(either))

	both, err := repo.Query(ctx, Query{Filters: []Filter{
		{Column: "target_deed", IDs: []uuid.UUID{deed}},
		{Column: "target_group", IDs: []uuid.UUID{group}},
	}})
	require.NoError(t, err)
	assert.Empty(t, both)

	untargeted, err := repo.Query(ctx, Query{Filters: []Filter{
		{Column: "target_deed", Null: true},
		{Column: "target_group", Null: true},
	}})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[4], ids[3]}, idsOf(untargeted))

	limited, err := repo.Query(ctx, Query{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[4], ids[3]}, idsOf(limited))
}

func TestCountLikesAndComments(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()
	act := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&entity.Like{UserID: uuid.New(), Target: entity.Target{Act: ptr(act)}}).Error)
	}
	require.NoError(t, db.Create(&entity.Comment{UserID: uuid.New(), Text: "well done", Target: entity.Target{Act: ptr(act)}}).Error)

	likes, err := repo.CountLikes(ctx, entity.TargetAct, []uuid.UUID{act, uuid.New()})
	require.NoError(t, err)
	assert.EqualValues(t, 3, likes[act])

	comments, err := repo.CountComments(ctx, entity.TargetAct, []uuid.UUID{act})
	require.NoError(t, err)
	assert.EqualValues(t, 1, comments[act])

	none, err := repo.CountLikes(ctx, "unknown", []uuid.UUID{act})
	require.NoError(t, err)
	assert.Empty(t, none)
}
