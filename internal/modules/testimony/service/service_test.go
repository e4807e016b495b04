package service

import (
	"context"
	"testing"

	"anoa.com/gooddeeds/internal/entity"
	feedRepo "anoa.com/gooddeeds/internal/modules/feed/repository"
	feedService "anoa.com/gooddeeds/internal/modules/feed/service"
	groupDto "anoa.com/gooddeeds/internal/modules/group/dto"
	groupRepo "anoa.com/gooddeeds/internal/modules/group/repository"
	groupService "anoa.com/gooddeeds/internal/modules/group/service"
	"anoa.com/gooddeeds/internal/modules/testimony/dto"
	testimonyRepo "anoa.com/gooddeeds/internal/modules/testimony/repository"
	userRepo "anoa.com/gooddeeds/internal/modules/user/repository"
	"anoa.com/gooddeeds/internal/testutil"
	"anoa.com/gooddeeds/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (TestimonyService, groupService.GroupService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	users := userRepo.NewUserRepository(db)
	groups := groupService.NewGroupService(groupRepo.NewGroupRepository(db), users)
	agg := feedService.NewAggregator(feedRepo.NewFeedRepository(db), nil)
	svc := NewTestimonyService(testimonyRepo.NewTestimonyRepository(db), groups, users, feedService.NewInlineEvents(agg))
	return svc, groups, db
}

func TestGroupTestimonyReachesGroupFeed(t *testing.T) {
	svc, groups, db := setup(t)
	ctx := context.Background()
	author := uuid.New()

	group, err := groups.CreateGroup(ctx, uuid.New(), groupDto.CreateGroupRequest{Name: "Chapel"})
	require.NoError(t, err)

	testimony, err := svc.CreateTestimony(ctx, author, dto.CreateTestimonyRequest{
		Text:    "I was lost and now am found",
		GroupID: group.ID.String(),
	})
	require.NoError(t, err)

	var items []entity.FeedItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].TestimonyID)
	assert.Equal(t, testimony.ID, *items[0].TestimonyID)
	require.NotNil(t, items[0].Target.Group)
	assert.Equal(t, group.ID, *items[0].Target.Group)

	require.NoError(t, svc.DeleteTestimony(ctx, author, testimony.ID))
	require.NoError(t, db.Find(&items).Error)
	assert.Empty(t, items)
}

func TestTestimonyWithoutGroupHasNoFeedItem(t *testing.T) {
	svc, _, db := setup(t)

	_, err := svc.CreateTestimony(context.Background(), uuid.New(), dto.CreateTestimonyRequest{Text: "quiet thanks"})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&entity.FeedItem{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestTestimonyRejections(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CreateTestimony(ctx, uuid.New(), dto.CreateTestimonyRequest{Text: "bullshit"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.CreateTestimony(ctx, uuid.New(), dto.CreateTestimonyRequest{Text: "hello", GroupID: uuid.NewString()})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.CreateTestimony(ctx, uuid.New(), dto.CreateTestimonyRequest{Text: "hello", CampaignID: "x"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	assert.ErrorIs(t, svc.DeleteTestimony(ctx, uuid.New(), uuid.New()), apperror.ErrNotFound)
}

func TestTestimonyDeleteNeedsAuthor(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	author := uuid.New()

	testimony, err := svc.CreateTestimony(ctx, author, dto.CreateTestimonyRequest{Text: "grateful"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteTestimony(ctx, uuid.New(), testimony.ID), apperror.ErrForbidden)
}
