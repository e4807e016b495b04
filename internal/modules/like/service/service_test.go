package service

import (
	"context"
	"testing"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/internal/modules/like/dto"
	likeRepo "anoa.com/gooddeeds/internal/modules/like/repository"
	targetRepo "anoa.com/gooddeeds/internal/modules/target/repository"
	"anoa.com/gooddeeds/internal/testutil"
	"anoa.com/gooddeeds/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeKeepsCachedCountInStep(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	svc := NewLikeService(likeRepo.NewLikeRepository(db), targetRepo.NewTargetRepository(db), rdb)
	ctx := context.Background()

	deed := &entity.Deed{Title: "Give water"}
	require.NoError(t, db.Create(deed).Error)
	req := dto.ToggleLikeRequest{TargetType: entity.TargetDeed, TargetID: deed.ID.String()}
	alice, bob := uuid.New(), uuid.New()

	st, err := svc.Toggle(ctx, alice, req)
	require.NoError(t, err)
	assert.Equal(t, dto.LikeStatus{Liked: true, Likes: 1}, *st)
	assert.Equal(t, "1", mr.HGet("counts:likes:deed", deed.ID.String()))

	st, err = svc.Toggle(ctx, bob, req)
	require.NoError(t, err)
	assert.Equal(t, dto.LikeStatus{Liked: true, Likes: 2}, *st)

	st, err = svc.Toggle(ctx, alice, req)
	require.NoError(t, err)
	assert.Equal(t, dto.LikeStatus{Liked: false, Likes: 1}, *st)
	assert.Equal(t, "1", mr.HGet("counts:likes:deed", deed.ID.String()))

	mr.Del("counts:likes:deed")
	st, err = svc.Status(ctx, bob, entity.TargetDeed, deed.ID.String())
	require.NoError(t, err)
	assert.Equal(t, dto.LikeStatus{Liked: true, Likes: 1}, *st)
	assert.Equal(t, "1", mr.HGet("counts:likes:deed", deed.ID.String()))
}

func TestToggleLikeWithoutRedis(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewLikeService(likeRepo.NewLikeRepository(db), targetRepo.NewTargetRepository(db), nil)
	ctx := context.Background()

	group := &entity.Group{Name: "g", URL: "g", CreatedBy: uuid.New()}
	require.NoError(t, db.Create(group).Error)

	st, err := svc.Toggle(ctx, uuid.New(), dto.ToggleLikeRequest{TargetType: entity.TargetGroup, TargetID: group.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Likes)
}

func TestToggleLikeRejections(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewLikeService(likeRepo.NewLikeRepository(db), targetRepo.NewTargetRepository(db), nil)
	ctx := context.Background()

	_, err := svc.Toggle(ctx, uuid.New(), dto.ToggleLikeRequest{TargetType: entity.TargetAct, TargetID: uuid.NewString()})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Toggle(ctx, uuid.New(), dto.ToggleLikeRequest{TargetType: "user", TargetID: uuid.NewString()})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Status(ctx, uuid.New(), entity.TargetDeed, "nope")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
