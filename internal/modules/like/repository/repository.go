package repository

import (
	"context"

	"anoa.com/gooddeeds/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeRepository interface {
	Find(ctx context.Context, userID uuid.UUID, target entity.Target) (*entity.Like, error)
	Create(ctx context.Context, like *entity.Like) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, target entity.Target) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func targetScope(target entity.Target) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		kind, id := target.Kind()
		return db.Where("target_"+kind+" = ?", id)
	}
}

// Find returns nil when the user has not liked target.
func (r *likeRepository) Find(ctx context.Context, userID uuid.UUID, target entity.Target) (*entity.Like, error) {
	var likes []entity.Like
	err := r.db.WithContext(ctx).
		Scopes(targetScope(target)).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&likes).Error
	if err != nil || len(likes) == 0 {
		return nil, err
	}
	return &likes[0], nil
}

func (r *likeRepository) Create(ctx context.Context, like *entity.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *likeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Like{}).Error
}

func (r *likeRepository) Count(ctx context.Context, target entity.Target) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Like{}).Scopes(targetScope(target)).Count(&count).Error
	return count, err
}
