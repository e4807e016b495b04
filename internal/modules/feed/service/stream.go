package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/internal/modules/feed/dto"
	"anoa.com/gooddeeds/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const ChannelAll = "feed:all"

func GroupChannel(groupID uuid.UUID) string {
	return fmt.Sprintf("feed:group:%s", groupID.String())
}

// Publisher pushes new or grown feed items to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, item *entity.FeedItem)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *entity.FeedItem) {}

type redisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a publisher on the feed channels, or a no-op one without Redis.
func NewRedisPublisher(rdb *redis.Client) Publisher {
	if rdb == nil {
		return NopPublisher{}
	}
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) Publish(ctx context.Context, item *entity.FeedItem) {
	payload, err := json.Marshal(dto.FromEntity(item))
	if err != nil {
		logger.Warn("marshal feed item", zap.Error(err))
		return
	}

	channels := []string{ChannelAll}
	if item.GroupID != nil {
		channels = append(channels, GroupChannel(*item.GroupID))
	}
	if item.Target.Group != nil && (item.GroupID == nil || *item.Target.Group != *item.GroupID) {
		channels = append(channels, GroupChannel(*item.Target.Group))
	}

	pipe := p.rdb.Pipeline()
	for _, ch := range channels {
		pipe.Publish(ctx, ch, payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("publish feed item", zap.String("feed_item", item.ID.String()), zap.Error(err))
	}
}
