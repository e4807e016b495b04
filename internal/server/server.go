package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"anoa.com/gooddeeds/internal/config"
	"anoa.com/gooddeeds/internal/middleware"
	"anoa.com/gooddeeds/internal/search"
	"anoa.com/gooddeeds/pkg/logger"
	"anoa.com/gooddeeds/pkg/ratelimiter"
	"anoa.com/gooddeeds/pkg/storage"

	actHttp "anoa.com/gooddeeds/internal/modules/act/delivery/http"
	actRepo "anoa.com/gooddeeds/internal/modules/act/repository"
	actService "anoa.com/gooddeeds/internal/modules/act/service"

	commentHttp "anoa.com/gooddeeds/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/gooddeeds/internal/modules/comment/repository"
	commentService "anoa.com/gooddeeds/internal/modules/comment/service"

	deedHttp "anoa.com/gooddeeds/internal/modules/deed/delivery/http"
	deedRepo "anoa.com/gooddeeds/internal/modules/deed/repository"
	deedService "anoa.com/gooddeeds/internal/modules/deed/service"

	feedHttp "anoa.com/gooddeeds/internal/modules/feed/delivery/http"
	feedRepo "anoa.com/gooddeeds/internal/modules/feed/repository"
	feedService "anoa.com/gooddeeds/internal/modules/feed/service"

	groupHttp "anoa.com/gooddeeds/internal/modules/group/delivery/http"
	groupRepo "anoa.com/gooddeeds/internal/modules/group/repository"
	groupService "anoa.com/gooddeeds/internal/modules/group/service"

	likeHttp "anoa.com/gooddeeds/internal/modules/like/delivery/http"
	likeRepo "anoa.com/gooddeeds/internal/modules/like/repository"
	likeService "anoa.com/gooddeeds/internal/modules/like/service"

	targetRepo "anoa.com/gooddeeds/internal/modules/target/repository"

	testimonyHttp "anoa.com/gooddeeds/internal/modules/testimony/delivery/http"
	testimonyRepo "anoa.com/gooddeeds/internal/modules/testimony/repository"
	testimonyService "anoa.com/gooddeeds/internal/modules/testimony/service"

	userHttp "anoa.com/gooddeeds/internal/modules/user/delivery/http"
	userRepo "anoa.com/gooddeeds/internal/modules/user/repository"
	userService "anoa.com/gooddeeds/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ServiceName = "gooddeeds"

// Deps are the connections built in main. Redis, Search and Images may be nil.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Search search.DeedIndex
	Images storage.ImageStorage
}

type Server struct {
	engine   *gin.Engine
	stopFeed func(context.Context) error
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	db, redisClient := deps.DB, deps.Redis

	// Repositories
	userRepository := userRepo.NewUserRepository(db)
	groupRepository := groupRepo.NewGroupRepository(db)
	deedRepository := deedRepo.NewDeedRepository(db)
	actRepository := actRepo.NewActRepository(db)
	commentRepository := commentRepo.NewCommentRepository(db)
	likeRepository := likeRepo.NewLikeRepository(db)
	testimonyRepository := testimonyRepo.NewTestimonyRepository(db)
	targetRepository := targetRepo.NewTargetRepository(db)
	feedRepository := feedRepo.NewFeedRepository(db)

	// Feed aggregation runs behind the dispatcher
	aggregator := feedService.NewAggregator(
		feedRepository,
		feedService.NewRedisPublisher(redisClient),
		feedService.WithStreakWindow(cfg.FeedStreakWindow),
	)
	dispatcher := feedService.NewDispatcher(aggregator, cfg.FeedWorkers, cfg.FeedQueueSize)
	stopFeed := dispatcher.Start()

	// Services
	authSvc := userService.NewAuthService(userRepository, deps.Images, cfg.JWTSecret, cfg.JWTTTL)
	groupSvc := groupService.NewGroupService(groupRepository, userRepository)
	deedSvc := deedService.NewDeedService(deedRepository, deps.Search)
	actSvc := actService.NewActService(actRepository, deedSvc, groupSvc, userRepository, dispatcher, aggregator)
	commentSvc := commentService.NewCommentService(
		commentRepository,
		targetRepository,
		userRepository,
		dispatcher,
		ratelimiter.New(redisClient),
		cfg.RateLimitComment,
	)
	likeSvc := likeService.NewLikeService(likeRepository, targetRepository, redisClient)
	testimonySvc := testimonyService.NewTestimonyService(testimonyRepository, groupSvc, userRepository, dispatcher)
	feedSvc := feedService.NewQueryService(feedRepository)

	// Handlers
	authHandler := userHttp.NewAuthHandler(authSvc)
	groupHandler := groupHttp.NewGroupHandler(groupSvc)
	deedHandler := deedHttp.NewDeedHandler(deedSvc)
	actHandler := actHttp.NewActHandler(actSvc)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)
	likeHandler := likeHttp.NewLikeHandler(likeSvc)
	testimonyHandler := testimonyHttp.NewTestimonyHandler(testimonySvc)
	feedHandler := feedHttp.NewFeedHandler(feedSvc, redisClient)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(ServiceName))
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/api/feeds/ws"},
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/feeds/ws"})))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "feed_queue": dispatcher.QueueLen()})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/users/me", authHandler.Me)
		protected.PUT("/users/me/picture", authHandler.UpdatePicture)

		protected.POST("/groups", groupHandler.CreateGroup)
		protected.GET("/groups/:group_id", groupHandler.GetGroup)
		protected.POST("/groups/:group_id/join", groupHandler.Join)
		protected.POST("/groups/:group_id/campaigns", groupHandler.CreateCampaign)

		protected.GET("/deeds", deedHandler.ListDeeds)
		protected.POST("/deeds", authMiddleware.RequireSuperAdmin(), deedHandler.CreateDeed)

		protected.POST("/acts", actHandler.CreateAct)
		protected.POST("/acts/bulk", actHandler.CreateBulkActs)
		protected.DELETE("/acts/:act_id", actHandler.DeleteAct)

		protected.POST("/comments", commentHandler.CreateComment)
		protected.DELETE("/comments/:comment_id", commentHandler.DeleteComment)

		protected.POST("/likes", likeHandler.Toggle)
		protected.GET("/likes/:target_type/:target_id", likeHandler.Status)

		protected.POST("/testimonies", testimonyHandler.CreateTestimony)
		protected.DELETE("/testimonies/:testimony_id", testimonyHandler.DeleteTestimony)

		protected.GET("/feeds", feedHandler.GetFeed)
		protected.GET("/feeds/ws", feedHandler.Stream)
	}

	return &Server{
		engine:   router,
		stopFeed: stopFeed,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Shutdown drains queued feed events. Call it after the HTTP server stopped
// accepting requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.stopFeed(ctx); err != nil {
		logger.Warn("feed dispatcher did not drain", zap.Error(err))
		return err
	}
	return nil
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
