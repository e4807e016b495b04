package repository

import (
	"context"
	"strings"

	"anoa.com/gooddeeds/internal/entity"
	"github.com/google/uuid"
)

// Filter restricts one column to a set of ids, to NULL, or to either.
// Column must come from an allow-list; it is written into the SQL as is.
type Filter struct {
	Column string
	IDs    []uuid.UUID
	Null   bool
	// SkipTestimonies keeps testimony items out of the match so a filter on
	// the author cannot identify them.
	SkipTestimonies bool
}

func (f Filter) sql() (string, []interface{}) {
	var parts []string
	var args []interface{}
	if len(f.IDs) > 0 {
		parts = append(parts, f.Column+" IN ?")
		args = append(args, f.IDs)
	}
	if f.Null {
		parts = append(parts, f.Column+" IS NULL")
	}
	expr := parts[0]
	if len(parts) > 1 {
		expr = "(" + strings.Join(parts, " OR ") + ")"
	}
	if f.SkipTestimonies {
		expr = "(" + expr + " AND testimony_id IS NULL)"
	}
	return expr, args
}

type Query struct {
	Filters []Filter
	// Or joins the filters with OR instead of AND. Cursors are always ANDed.
	Or     bool
	Before *uuid.UUID
	After  *uuid.UUID
	Limit  int
}

func (r *feedRepository) Query(ctx context.Context, q Query) ([]entity.FeedItem, error) {
	tx := r.db.WithContext(ctx).Model(&entity.FeedItem{})

	var parts []string
	var args []interface{}
	for _, f := range q.Filters {
		if len(f.IDs) == 0 && !f.Null {
			continue
		}
		sql, fargs := f.sql()
		parts = append(parts, sql)
		args = append(args, fargs...)
	}
	if len(parts) > 0 {
		sep := " AND "
		if q.Or {
			sep = " OR "
		}
		tx = tx.Where("("+strings.Join(parts, sep)+")", args...)
	}

	if q.Before != nil {
		tx = tx.Where("id < ?", *q.Before)
	}
	if q.After != nil {
		tx = tx.Where("id > ?", *q.After)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	items := []entity.FeedItem{}
	if err := tx.Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Lookup loads the display projections a feed page is populated with.
type Lookup interface {
	UsersByID(ctx context.Context, ids []uuid.UUID) ([]entity.User, error)
	GroupsByID(ctx context.Context, ids []uuid.UUID) ([]entity.Group, error)
	CampaignsByID(ctx context.Context, ids []uuid.UUID) ([]entity.Campaign, error)
	DeedsByID(ctx context.Context, ids []uuid.UUID) ([]entity.Deed, error)
	// CountLikes and CountComments count rows whose target column (deed, act,
	// comment or group) is one of ids.
	CountLikes(ctx context.Context, targetKind string, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	CountComments(ctx context.Context, targetKind string, ids []uuid.UUID) (map[uuid.UUID]int64, error)
}

func (r *feedRepository) UsersByID(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	var users []entity.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Select("id", "name", "picture").Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *feedRepository) GroupsByID(ctx context.Context, ids []uuid.UUID) ([]entity.Group, error) {
	var groups []entity.Group
	if len(ids) == 0 {
		return groups, nil
	}
	err := r.db.WithContext(ctx).Select("id", "name", "url").Where("id IN ?", ids).Find(&groups).Error
	return groups, err
}

func (r *feedRepository) CampaignsByID(ctx context.Context, ids []uuid.UUID) ([]entity.Campaign, error) {
	var campaigns []entity.Campaign
	if len(ids) == 0 {
		return campaigns, nil
	}
	err := r.db.WithContext(ctx).Select("id", "group_id", "title").Where("id IN ?", ids).Find(&campaigns).Error
	return campaigns, err
}

func (r *feedRepository) DeedsByID(ctx context.Context, ids []uuid.UUID) ([]entity.Deed, error) {
	var deeds []entity.Deed
	if len(ids) == 0 {
		return deeds, nil
	}
	err := r.db.WithContext(ctx).Select("id", "title").Where("id IN ?", ids).Find(&deeds).Error
	return deeds, err
}

func (r *feedRepository) CountLikes(ctx context.Context, targetKind string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countByTarget(ctx, &entity.Like{}, targetKind, ids)
}

func (r *feedRepository) CountComments(ctx context.Context, targetKind string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countByTarget(ctx, &entity.Comment{}, targetKind, ids)
}

var targetColumns = map[string]string{
	entity.TargetDeed:    "target_deed",
	entity.TargetAct:     "target_act",
	entity.TargetComment: "target_comment",
	entity.TargetGroup:   "target_group",
}

func (r *feedRepository) countByTarget(ctx context.Context, model interface{}, targetKind string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64)
	column, ok := targetColumns[targetKind]
	if !ok || len(ids) == 0 {
		return counts, nil
	}

	type result struct {
		ID    uuid.UUID
		Count int64
	}
	var results []result
	err := r.db.WithContext(ctx).
		Model(model).
		Select(column+" AS id, count(*) AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		counts[res.ID] = res.Count
	}
	return counts, nil
}
