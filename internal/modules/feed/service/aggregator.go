package service

import (
	"context"
	"fmt"
	"time"

	"anoa.com/gooddeeds/internal/entity"
	feedRepo "anoa.com/gooddeeds/internal/modules/feed/repository"
	"anoa.com/gooddeeds/pkg/logger"
	"anoa.com/gooddeeds/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const DefaultStreakWindow = 5 * time.Minute

// Aggregator turns saved and removed source documents into feed item changes.
type Aggregator struct {
	repo      feedRepo.FeedRepository
	publisher Publisher
	window    time.Duration
	now       func() time.Time
}

type AggregatorOption func(*Aggregator)

func WithStreakWindow(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d > 0 {
			a.window = d
		}
	}
}

func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) { a.now = now }
}

func NewAggregator(repo feedRepo.FeedRepository, publisher Publisher, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		repo:      repo,
		publisher: publisher,
		window:    DefaultStreakWindow,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.publisher == nil {
		a.publisher = NopPublisher{}
	}
	return a
}

// OnDocumentSaved applies a saved act, comment or testimony to the feed.
// Bulk and non-qualifying documents are ignored.
func (a *Aggregator) OnDocumentSaved(ctx context.Context, src Source) error {
	if src.Bulk || !src.qualifies() {
		return nil
	}

	ctx, span := tracing.Start(ctx, "feed.OnDocumentSaved",
		attribute.String("source.type", string(src.Type)),
		attribute.String("source.id", src.ID.String()),
	)
	defer span.End()

	now := a.now()
	candidate := src.candidate()

	if src.Type == SourceAct {
		item, err := a.collapse(ctx, candidate, now)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if item != nil {
			a.publisher.Publish(ctx, item)
			return nil
		}
	}

	candidate.Created = now
	candidate.Modified = now
	item, created, err := a.repo.FindOrCreate(ctx, candidate)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("find or create feed item for %s %s: %w", src.Type, src.ID, err)
	}
	if created {
		a.publisher.Publish(ctx, item)
	}
	return nil
}

// collapse folds an act into the user's recent item for the same deed. It
// returns nil when there is no open streak.
func (a *Aggregator) collapse(ctx context.Context, candidate *entity.FeedItem, now time.Time) (*entity.FeedItem, error) {
	if candidate.Target.Deed == nil {
		return nil, nil
	}

	since := now.Add(-a.window)
	streak, err := a.repo.FindStreak(ctx, candidate.UserID, *candidate.Target.Deed, since)
	if err != nil {
		return nil, fmt.Errorf("find streak: %w", err)
	}
	if streak == nil {
		return nil, nil
	}

	ok, err := a.repo.Increment(ctx, streak.ID, since, now)
	if err != nil {
		return nil, fmt.Errorf("increment feed item %s: %w", streak.ID, err)
	}
	if !ok {
		// expired or removed between the lookup and the update
		logger.Debug("feed streak closed before increment", zap.String("feed_item", streak.ID.String()))
		return nil, nil
	}

	streak.Count++
	streak.Modified = now
	return streak, nil
}

// OnDocumentRemoved deletes the item that represents the removed document.
// Collapsed items are removed whole; a missing item is not an error.
func (a *Aggregator) OnDocumentRemoved(ctx context.Context, src Source) error {
	ctx, span := tracing.Start(ctx, "feed.OnDocumentRemoved",
		attribute.String("source.type", string(src.Type)),
		attribute.String("source.id", src.ID.String()),
	)
	defer span.End()

	n, err := a.repo.DeleteBySource(ctx, src.ID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete feed items for %s %s: %w", src.Type, src.ID, err)
	}
	if n > 0 {
		logger.Debug("feed items removed", zap.String("source", src.ID.String()), zap.Int64("count", n))
	}
	return nil
}
