package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"anoa.com/gooddeeds/pkg/database"
	"anoa.com/gooddeeds/pkg/storage"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	Database database.Config
	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string
	JWTTTL    time.Duration

	SuperAdminEmail    string
	SuperAdminPassword string

	SentryDSN    string
	OTelEndpoint string

	FeedStreakWindow time.Duration
	FeedWorkers      int
	FeedQueueSize    int

	RateLimitComment time.Duration

	Cloudinary storage.CloudinaryConfig
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func Load() (*Config, error) {
	// .env is optional; production sets real env vars
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "gooddeeds"),
			Port:     getEnv("DB_PORT", "5432"),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SuperAdminEmail:    getEnv("SUPERADMIN_EMAIL", "admin@gooddeeds.local"),
		SuperAdminPassword: os.Getenv("SUPERADMIN_PASSWORD"),

		SentryDSN:    os.Getenv("SENTRY_DSN"),
		OTelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		Cloudinary: storage.CloudinaryConfig{
			CloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:       os.Getenv("CLOUDINARY_API_KEY"),
			APISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
			UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "gooddeeds"),
		},
	}
	cfg.Database.Debug = cfg.IsDevelopment()

	var err error
	if cfg.JWTTTL, err = parseDuration("JWT_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.FeedStreakWindow, err = parseDuration("FEED_STREAK_WINDOW", "5m"); err != nil {
		return nil, err
	}
	if cfg.RateLimitComment, err = parseDuration("RATE_LIMIT_COMMENT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FeedWorkers, err = parseInt("FEED_WORKERS", "4"); err != nil {
		return nil, err
	}
	if cfg.FeedQueueSize, err = parseInt("FEED_QUEUE_SIZE", "1024"); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "dev-secret"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
