package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         string        `env:"PORT" envDefault:"3000"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DB    DBConfig
	Redis RedisConfig
	Kafka KafkaConfig

	JWTSecret string `env:"JWT_SECRET"`

	// Per-user limiter on mutating leave routes.
	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"5"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
	// Per-IP limiter on every route.
	IPRateLimitPerSecond float64 `env:"IP_RATE_LIMIT_PER_SECOND" envDefault:"20"`
	IPRateLimitBurst     int     `env:"IP_RATE_LIMIT_BURST" envDefault:"40"`

	SummaryCacheTTL    time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"5m"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"3s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"50"`
	ConnectMaxRetries  int           `env:"CONNECT_MAX_RETRIES" envDefault:"5"`
}

type DBConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"leaveflow"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
}

type KafkaConfig struct {
	Broker        string `env:"KAFKA_BROKER"`
	ConsumerGroup string `env:"KAFKA_CONSUMER_GROUP" envDefault:"leaveflow-stage-history"`
}

// Load reads the process environment. Call godotenv.Load first to pick up a .env file.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}
