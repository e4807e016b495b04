package handler

import (
	"net/http"

	"anoa.com/gooddeeds/internal/modules/feed/dto"
	feedService "anoa.com/gooddeeds/internal/modules/feed/service"
	"anoa.com/gooddeeds/pkg/logger"
	"anoa.com/gooddeeds/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type FeedHandler struct {
	service     feedService.QueryService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

func NewFeedHandler(service feedService.QueryService, redisClient *redis.Client) *FeedHandler {
	return &FeedHandler{
		service:     service,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// GetFeed lists feed items. Filters, operator, before/after and limit come
// from the query string.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	items, err := h.service.Query(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FeedListResponse{Data: items})
}

// Stream forwards live feed items over a websocket. ?group=<id> narrows the
// stream to one group.
func (h *FeedHandler) Stream(c *gin.Context) {
	channel := feedService.ChannelAll
	if raw := c.Query("group"); raw != "" {
		groupID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
			return
		}
		channel = feedService.GroupChannel(groupID)
	}

	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live feed unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("failed to upgrade websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		logger.Warn("failed to subscribe to feed channel", zap.String("channel", channel), zap.Error(err))
		return
	}

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// payload is already the JSON feed item
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				logger.Debug("feed websocket write failed", zap.Error(err))
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
