package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/gooddeeds/internal/entity"
	feedRepo "anoa.com/gooddeeds/internal/modules/feed/repository"
	"anoa.com/gooddeeds/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	repo  feedRepo.FeedRepository
	clock *testutil.Clock
	agg   *Aggregator
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	repo := feedRepo.NewFeedRepository(db)
	clock := testutil.NewClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	return &fixture{
		db:    db,
		repo:  repo,
		clock: clock,
		agg:   NewAggregator(repo, nil, WithClock(clock.Now)),
	}
}

func (f *fixture) items(t *testing.T) []entity.FeedItem {
	t.Helper()
	items, err := f.repo.Query(context.Background(), feedRepo.Query{})
	require.NoError(t, err)
	return items
}

func (f *fixture) act(t *testing.T, user, deed uuid.UUID) *entity.Act {
	t.Helper()
	a := &entity.Act{UserID: &user, DeedID: deed}
	require.NoError(t, f.db.Create(a).Error)
	return a
}

func TestActsWithinWindowCollapse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, deed := uuid.New(), uuid.New()

	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, deed))))
	f.clock.Advance(4 * time.Minute)
	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, deed))))

	items := f.items(t)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Count)
	assert.True(t, items[0].Modified.Equal(f.clock.Now()))
	assert.True(t, items[0].Created.Before(items[0].Modified))
}

func TestStreakWindowSlidesWithEachAct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, deed := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, deed))))
		f.clock.Advance(4 * time.Minute)
	}

	items := f.items(t)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Count)
}

func TestActsOutsideWindowDoNotCollapse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, deed := uuid.New(), uuid.New()

	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, deed))))
	f.clock.Advance(5*time.Minute + time.Second)
	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, deed))))

	items := f.items(t)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, 1, it.Count)
	}
}

func TestDifferentUsersOrDeedsDoNotCollapse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, deed := uuid.New(), uuid.New()

	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, deed))))
	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(f.act(t, uuid.New(), deed))))
	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, uuid.New()))))

	assert.Len(t, f.items(t), 3)
}

func TestActCarriesContext(t *testing.T) {
	f := newFixture(t)
	user, deed, group, campaign := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	a := &entity.Act{UserID: &user, DeedID: deed, GroupID: &group, CampaignID: &campaign}
	require.NoError(t, f.db.Create(a).Error)

	require.NoError(t, f.agg.OnDocumentSaved(context.Background(), ActSource(a)))

	items := f.items(t)
	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, user, it.UserID)
	assert.Equal(t, group, *it.GroupID)
	assert.Equal(t, campaign, *it.CampaignID)
	assert.Equal(t, deed, *it.Target.Deed)
	assert.Nil(t, it.Target.Group)
	assert.Equal(t, a.ID, *it.ActID)
	assert.False(t, it.Bulk)
}

func TestSavingSameActTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.act(t, uuid.New(), uuid.New())

	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(a)))
	f.clock.Advance(time.Hour)
	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(a)))

	items := f.items(t)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Count)
}

func TestBulkActsAreSkipped(t *testing.T) {
	f := newFixture(t)
	group := uuid.New()
	a := &entity.Act{DeedID: uuid.New(), GroupID: &group, Bulk: true}
	require.NoError(t, f.db.Create(a).Error)

	require.NoError(t, f.agg.OnDocumentSaved(context.Background(), ActSource(a)))
	assert.Empty(t, f.items(t))
}

func TestCommentsNeverCollapse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, deed := uuid.New(), uuid.New()

	for i := 0; i < 2; i++ {
		c := &entity.Comment{UserID: user, Text: "great", Target: entity.Target{Deed: &deed}}
		require.NoError(t, f.db.Create(c).Error)
		require.NoError(t, f.agg.OnDocumentSaved(ctx, CommentSource(c)))
	}

	items := f.items(t)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, 1, it.Count)
		assert.NotNil(t, it.CommentID)
		assert.Equal(t, deed, *it.Target.Deed)
	}
}

func TestCommentOnGroupTargetsGroup(t *testing.T) {
	f := newFixture(t)
	group := uuid.New()
	c := &entity.Comment{UserID: uuid.New(), Text: "hello", Target: entity.Target{Group: &group}}
	require.NoError(t, f.db.Create(c).Error)

	require.NoError(t, f.agg.OnDocumentSaved(context.Background(), CommentSource(c)))

	items := f.items(t)
	require.Len(t, items, 1)
	assert.Equal(t, group, *items[0].Target.Group)
	assert.Nil(t, items[0].Target.Deed)
}

func TestCommentWithoutDeedOrGroupIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent, act := uuid.New(), uuid.New()

	onComment := &entity.Comment{UserID: uuid.New(), Text: "agreed", Target: entity.Target{Comment: &parent}}
	require.NoError(t, f.agg.OnDocumentSaved(ctx, CommentSource(onComment)))
	onAct := &entity.Comment{UserID: uuid.New(), Text: "nice", Target: entity.Target{Act: &act}}
	require.NoError(t, f.agg.OnDocumentSaved(ctx, CommentSource(onAct)))

	assert.Empty(t, f.items(t))
}

func TestTestimonyInGroupCreatesItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	group := uuid.New()

	inGroup := &entity.SalvationTestimony{UserID: uuid.New(), GroupID: &group, Text: "..."}
	require.NoError(t, f.db.Create(inGroup).Error)
	require.NoError(t, f.agg.OnDocumentSaved(ctx, TestimonySource(inGroup)))

	alone := &entity.SalvationTestimony{UserID: uuid.New(), Text: "..."}
	require.NoError(t, f.db.Create(alone).Error)
	require.NoError(t, f.agg.OnDocumentSaved(ctx, TestimonySource(alone)))

	items := f.items(t)
	require.Len(t, items, 1)
	assert.Equal(t, inGroup.ID, *items[0].TestimonyID)
	assert.Equal(t, group, *items[0].Target.Group)
}

func TestRemovingActRemovesItsItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.act(t, uuid.New(), uuid.New())

	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(a)))
	require.NoError(t, f.agg.OnDocumentRemoved(ctx, ActSource(a)))

	var n int64
	require.NoError(t, f.db.Model(&entity.FeedItem{}).Where("act_id = ?", a.ID).Count(&n).Error)
	assert.Zero(t, n)

	// second removal is a no-op
	require.NoError(t, f.agg.OnDocumentRemoved(ctx, ActSource(a)))
}

// Current behavior, not a contract: removing the act that opened a streak drops
// the whole collapsed item instead of decrementing it.
func TestRemovingFirstActOfStreakDropsWholeItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, deed := uuid.New(), uuid.New()

	first := f.act(t, user, deed)
	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(first)))
	second := f.act(t, user, deed)
	require.NoError(t, f.agg.OnDocumentSaved(ctx, ActSource(second)))
	require.Len(t, f.items(t), 1)

	require.NoError(t, f.agg.OnDocumentRemoved(ctx, ActSource(first)))
	assert.Empty(t, f.items(t))
}

func TestRemovingCommentAndTestimony(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deed, group := uuid.New(), uuid.New()

	c := &entity.Comment{UserID: uuid.New(), Text: "x", Target: entity.Target{Deed: &deed}}
	require.NoError(t, f.db.Create(c).Error)
	s := &entity.SalvationTestimony{UserID: uuid.New(), GroupID: &group, Text: "y"}
	require.NoError(t, f.db.Create(s).Error)

	require.NoError(t, f.agg.OnDocumentSaved(ctx, CommentSource(c)))
	require.NoError(t, f.agg.OnDocumentSaved(ctx, TestimonySource(s)))
	require.Len(t, f.items(t), 2)

	require.NoError(t, f.agg.OnDocumentRemoved(ctx, CommentSource(c)))
	require.NoError(t, f.agg.OnDocumentRemoved(ctx, TestimonySource(s)))
	assert.Empty(t, f.items(t))
}

type recordingPublisher struct {
	items []entity.FeedItem
}

func (p *recordingPublisher) Publish(_ context.Context, item *entity.FeedItem) {
	p.items = append(p.items, *item)
}

func TestPublishesCreatedAndCollapsedItems(t *testing.T) {
	f := newFixture(t)
	pub := &recordingPublisher{}
	agg := NewAggregator(f.repo, pub, WithClock(f.clock.Now))
	ctx := context.Background()
	user, deed := uuid.New(), uuid.New()

	require.NoError(t, agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, deed))))
	require.NoError(t, agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, deed))))

	require.Len(t, pub.items, 2)
	assert.Equal(t, 1, pub.items[0].Count)
	assert.Equal(t, 2, pub.items[1].Count)
	assert.Equal(t, pub.items[0].ID, pub.items[1].ID)
}

func TestCustomStreakWindow(t *testing.T) {
	f := newFixture(t)
	agg := NewAggregator(f.repo, nil, WithClock(f.clock.Now), WithStreakWindow(time.Minute))
	ctx := context.Background()
	user, deed := uuid.New(), uuid.New()

	require.NoError(t, agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, deed))))
	f.clock.Advance(2 * time.Minute)
	require.NoError(t, agg.OnDocumentSaved(ctx, ActSource(f.act(t, user, deed))))

	assert.Len(t, f.items(t), 2)
}
