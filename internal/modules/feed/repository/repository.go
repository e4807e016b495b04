package repository

import (
	"context"
	"time"

	"anoa.com/gooddeeds/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeedRepository interface {
	Create(ctx context.Context, item *entity.FeedItem) error
	// FindOrCreate returns the item with the same act/comment/testimony identity as
	// candidate, inserting candidate when there is none. created reports which happened.
	FindOrCreate(ctx context.Context, candidate *entity.FeedItem) (item *entity.FeedItem, created bool, err error)
	// FindStreak returns the newest non-bulk item for user and deed modified at or after since, or nil.
	FindStreak(ctx context.Context, userID, deedID uuid.UUID, since time.Time) (*entity.FeedItem, error)
	// Increment bumps count and modified on an item that is still inside the window.
	// It returns false when the item expired or vanished in the meantime.
	Increment(ctx context.Context, id uuid.UUID, since, now time.Time) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.FeedItem, error)
	DeleteBySource(ctx context.Context, sourceID uuid.UUID) (int64, error)
	Query(ctx context.Context, q Query) ([]entity.FeedItem, error)

	Lookup
}

type feedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) Create(ctx context.Context, item *entity.FeedItem) error {
	if item.Count < 1 {
		item.Count = 1
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func identityScope(candidate *entity.FeedItem) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for column, id := range map[string]*uuid.UUID{
			"act_id":       candidate.ActID,
			"comment_id":   candidate.CommentID,
			"testimony_id": candidate.TestimonyID,
		} {
			if id == nil {
				db = db.Where(column + " IS NULL")
			} else {
				db = db.Where(column+" = ?", *id)
			}
		}
		return db
	}
}

func (r *feedRepository) findByIdentity(ctx context.Context, candidate *entity.FeedItem) (*entity.FeedItem, error) {
	// Use Find with slice to avoid "record not found" log noise from GORM's First()
	var items []entity.FeedItem
	err := r.db.WithContext(ctx).
		Scopes(identityScope(candidate)).
		Where("bulk = ?", false).
		Order("id ASC").
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *feedRepository) FindOrCreate(ctx context.Context, candidate *entity.FeedItem) (*entity.FeedItem, bool, error) {
	existing, err := r.findByIdentity(ctx, candidate)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	if candidate.Count < 1 {
		candidate.Count = 1
	}

	// A concurrent insert of the same source id loses on the unique index and
	// falls through to the lookup below.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(candidate)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return candidate, true, nil
	}

	existing, err = r.findByIdentity(ctx, candidate)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, gorm.ErrRecordNotFound
	}
	return existing, false, nil
}

func (r *feedRepository) FindStreak(ctx context.Context, userID, deedID uuid.UUID, since time.Time) (*entity.FeedItem, error) {
	var items []entity.FeedItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_deed = ? AND bulk = ? AND modified >= ?", userID, deedID, false, since).
		Where("act_id IS NOT NULL").
		Order("modified DESC").
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *feedRepository) Increment(ctx context.Context, id uuid.UUID, since, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.FeedItem{}).
		Where("id = ? AND modified >= ?", id, since).
		UpdateColumns(map[string]interface{}{
			"count":    gorm.Expr("count + ?", 1),
			"modified": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *feedRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.FeedItem, error) {
	var item entity.FeedItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *feedRepository) DeleteBySource(ctx context.Context, sourceID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("act_id = ? OR comment_id = ? OR testimony_id = ?", sourceID, sourceID, sourceID).
		Delete(&entity.FeedItem{})
	return res.RowsAffected, res.Error
}
