package service

import (
	"context"
	"fmt"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/internal/modules/like/dto"
	likeRepo "anoa.com/gooddeeds/internal/modules/like/repository"
	targetRepo "anoa.com/gooddeeds/internal/modules/target/repository"
	"anoa.com/gooddeeds/pkg/apperror"
	"anoa.com/gooddeeds/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type LikeService interface {
	// Toggle likes target for the user, or takes the like back.
	Toggle(ctx context.Context, userID uuid.UUID, req dto.ToggleLikeRequest) (*dto.LikeStatus, error)
	Status(ctx context.Context, userID uuid.UUID, targetType, targetID string) (*dto.LikeStatus, error)
}

type likeService struct {
	repo    likeRepo.LikeRepository
	targets targetRepo.TargetRepository
	counter *likeCounter
}

// NewLikeService caches counts in Redis when rdb is not nil.
func NewLikeService(repo likeRepo.LikeRepository, targets targetRepo.TargetRepository, rdb *redis.Client) LikeService {
	return &likeService{repo: repo, targets: targets, counter: &likeCounter{rdb: rdb}}
}

func parseTarget(targetType, targetID string) (entity.Target, error) {
	id, err := uuid.Parse(targetID)
	if err != nil {
		return entity.Target{}, fmt.Errorf("target must be a valid id: %w", apperror.ErrInvalidInput)
	}
	target, err := entity.NewTarget(targetType, id)
	if err != nil {
		return entity.Target{}, fmt.Errorf("%v: %w", err, apperror.ErrInvalidInput)
	}
	return target, nil
}

func (s *likeService) Toggle(ctx context.Context, userID uuid.UUID, req dto.ToggleLikeRequest) (*dto.LikeStatus, error) {
	target, err := parseTarget(req.TargetType, req.TargetID)
	if err != nil {
		return nil, err
	}
	exists, err := s.targets.Exists(ctx, target)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("like target: %w", apperror.ErrNotFound)
	}

	existing, err := s.repo.Find(ctx, userID, target)
	if err != nil {
		return nil, err
	}

	liked := existing == nil
	delta := int64(1)
	if existing != nil {
		if err := s.repo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		delta = -1
	} else if err := s.repo.Create(ctx, &entity.Like{UserID: userID, Target: target}); err != nil {
		return nil, err
	}

	if err := s.counter.add(ctx, target, delta); err != nil {
		logger.Warn("update cached like count", zap.Error(err))
	}

	likes, err := s.count(ctx, target)
	if err != nil {
		return nil, err
	}
	return &dto.LikeStatus{Liked: liked, Likes: likes}, nil
}

func (s *likeService) Status(ctx context.Context, userID uuid.UUID, targetType, targetID string) (*dto.LikeStatus, error) {
	target, err := parseTarget(targetType, targetID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Find(ctx, userID, target)
	if err != nil {
		return nil, err
	}
	likes, err := s.count(ctx, target)
	if err != nil {
		return nil, err
	}
	return &dto.LikeStatus{Liked: existing != nil, Likes: likes}, nil
}

func (s *likeService) count(ctx context.Context, target entity.Target) (int64, error) {
	n, ok, err := s.counter.get(ctx, target)
	if err != nil {
		logger.Warn("read cached like count", zap.Error(err))
	}
	if ok {
		return n, nil
	}

	n, err = s.repo.Count(ctx, target)
	if err != nil {
		return 0, err
	}
	if err := s.counter.set(ctx, target, n); err != nil {
		logger.Warn("cache like count", zap.Error(err))
	}
	return n, nil
}
