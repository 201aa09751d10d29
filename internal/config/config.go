package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const insecureDefaultSecret = "change-me-marketplace-secret"

// Config holds all configuration for the service and the counter-sync job.
type Config struct {
	ServiceName      string        `mapstructure:"SERVICE_NAME"`
	HTTPPort         string        `mapstructure:"HTTP_PORT"`
	HTTPReadTimeout  time.Duration `mapstructure:"HTTP_READ_TIMEOUT"`
	HTTPWriteTimeout time.Duration `mapstructure:"HTTP_WRITE_TIMEOUT"`

	MongoURI            string        `mapstructure:"MONGO_URI"`
	MongoDatabase       string        `mapstructure:"MONGO_DATABASE"`
	MongoConnectTimeout time.Duration `mapstructure:"MONGO_CONNECT_TIMEOUT"`
	MongoMaxPoolSize    uint64        `mapstructure:"MONGO_MAX_POOL_SIZE"`

	RedisAddress  string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	NATSURL string `mapstructure:"NATS_URL"`

	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	JWTTTL     time.Duration `mapstructure:"JWT_TTL"`
	BcryptCost int           `mapstructure:"BCRYPT_COST"`

	PrometheusMetricsPort  string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	CounterSyncSchedule    string        `mapstructure:"COUNTER_SYNC_SCHEDULE"`
	CounterSyncSettleDelay time.Duration `mapstructure:"COUNTER_SYNC_SETTLE_DELAY"`
	CounterSyncLockTTL     time.Duration `mapstructure:"COUNTER_SYNC_LOCK_TTL"`

	ListingCacheTTL   time.Duration `mapstructure:"LISTING_CACHE_TTL"`
	CategoryCacheSize int           `mapstructure:"CATEGORY_CACHE_SIZE"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "marketplace-service")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("HTTP_READ_TIMEOUT", "15s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "30s")

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "marketplace")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("MONGO_MAX_POOL_SIZE", 100)

	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("NATS_URL", "")

	v.SetDefault("JWT_SECRET", insecureDefaultSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 10)

	v.SetDefault("PROMETHEUS_METRICS_PORT", "9095")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "listing-photos")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")

	v.SetDefault("COUNTER_SYNC_SCHEDULE", "@every 1m")
	v.SetDefault("COUNTER_SYNC_SETTLE_DELAY", "1m")
	v.SetDefault("COUNTER_SYNC_LOCK_TTL", "2m")

	v.SetDefault("LISTING_CACHE_TTL", "1m")
	v.SetDefault("CATEGORY_CACHE_SIZE", 256)
}

// LoadConfig reads configuration from the environment on top of defaults.
// A .env file, if any, is loaded by main before this is called.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == insecureDefaultSecret {
		appLogger.Warn("JWT_SECRET is set to its default insecure value. Set a strong secret in the environment.")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("redis_address", cfg.RedisAddress),
		zap.Bool("nats_enabled", cfg.NATSURL != ""),
		zap.Bool("minio_enabled", cfg.MinioEnabled()),
		zap.Bool("smtp_enabled", cfg.SMTPEnabled()),
		zap.String("counter_sync_schedule", cfg.CounterSyncSchedule),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
	)
	return &cfg, nil
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.MongoDatabase == "" {
		errs = append(errs, errors.New("MONGO_DATABASE is required"))
	}
	if c.RedisAddress == "" {
		errs = append(errs, errors.New("REDIS_ADDRESS is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.CounterSyncSettleDelay < 0 {
		errs = append(errs, errors.New("COUNTER_SYNC_SETTLE_DELAY must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
