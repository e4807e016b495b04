package service

import (
	"context"
	"fmt"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// BulkBatch describes acts logged in one go by a group admin.
type BulkBatch struct {
	AdminID    uuid.UUID
	DeedID     uuid.UUID
	GroupID    uuid.UUID
	CampaignID *uuid.UUID
	Count      int
}

// RecordBulk creates the single feed item that stands for a whole batch. It
// never collapses into or merges with other items.
func (a *Aggregator) RecordBulk(ctx context.Context, batch BulkBatch) (*entity.FeedItem, error) {
	ctx, span := tracing.Start(ctx, "feed.RecordBulk",
		attribute.String("deed.id", batch.DeedID.String()),
		attribute.Int("bulk.count", batch.Count),
	)
	defer span.End()

	now := a.now()
	deed, group := batch.DeedID, batch.GroupID
	item := &entity.FeedItem{
		UserID:     batch.AdminID,
		GroupID:    &group,
		CampaignID: batch.CampaignID,
		Target:     entity.FeedTarget{Deed: &deed},
		Bulk:       true,
		Count:      batch.Count,
		Created:    now,
		Modified:   now,
	}
	if err := a.repo.Create(ctx, item); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create bulk feed item: %w", err)
	}

	a.publisher.Publish(ctx, item)
	return item, nil
}
