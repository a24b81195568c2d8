package app

import (
	"strings"
	"time"

	"github.com/yungbote/codesheets-backend/internal/clients/redis"
	"github.com/yungbote/codesheets-backend/internal/data/db"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/envutil"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
	"github.com/yungbote/codesheets-backend/internal/services"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultJWTSecret = "defaultsecret"
)

type Config struct {
	Port    string
	LogMode string

	DBDriver   string
	Postgres   db.PostgresConfig
	SQLitePath string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	Redis redis.Config

	AllowedOrigins []string
	MetricsEnabled bool
	Otel           observability.OtelConfig

	FeedMaxLimit int
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		DBDriver: strings.ToLower(envutil.String("DB_DRIVER", DriverPostgres)),
		Postgres: db.PostgresConfig{
			Host:     envutil.String("POSTGRES_HOST", "localhost"),
			Port:     envutil.String("POSTGRES_PORT", "5432"),
			User:     envutil.String("POSTGRES_USER", "postgres"),
			Password: envutil.String("POSTGRES_PASSWORD", ""),
			Name:     envutil.String("POSTGRES_NAME", "codesheets"),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
		},
		SQLitePath: envutil.String("SQLITE_PATH", "codesheets.db"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),

		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			TTL:      envutil.Seconds("ADVISORY_TTL_SECONDS", 10*time.Minute),
		},

		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "codesheets-api"),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development"),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},

		FeedMaxLimit: envutil.Int("FEED_MAX_LIMIT", services.DefaultFeedMax),
	}
	if cfg.FeedMaxLimit < 1 {
		cfg.FeedMaxLimit = services.DefaultFeedMax
	}
	if cfg.JWTSecretKey == defaultJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	return cfg
}
