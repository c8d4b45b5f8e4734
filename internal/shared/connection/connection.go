package connection

import (
	"context"
	"fmt"
	"time"

	"go-leaveflow/internal/shared/config"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var retryDelay = 5 * time.Second

func DSN(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode,
	)
}

func ConnectGORMWithRetry(cfg config.DBConfig, maxRetries int) (*gorm.DB, error) {
	log := zap.L().Named("connection.postgres")
	dsn := DSN(cfg)

	var lastErr error

	for i := 1; i <= maxRetries; i++ {

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			lastErr = err
			log.Warn("gorm open failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			log.Warn("get sql.DB failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		if err := sqlDB.Ping(); err != nil {
			lastErr = err
			log.Warn("db ping failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		// Pool config
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)

		log.Info("gorm connected to database", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
		return db, nil
	}

	return nil, fmt.Errorf("database connection failed after %d retries: %w", maxRetries, lastErr)
}

func ConnectRedisWithRetry(addr string, maxRetries int) (*redis.Client, error) {
	log := zap.L().Named("connection.redis")
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		lastErr = rdb.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			log.Info("connected to redis", zap.String("addr", addr))
			return rdb, nil
		}

		log.Warn("redis ping failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(lastErr))
		time.Sleep(retryDelay)
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("redis connection failed after %d retries: %w", maxRetries, lastErr)
}

// ConnectKafkaWithRetry dials the broker until it answers, then returns a writer
// that routes each message by its own Topic field.
func ConnectKafkaWithRetry(broker string, maxRetries int) (*kafkago.Writer, error) {
	log := zap.L().Named("connection.kafka")

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		conn, err := kafkago.DialContext(context.Background(), "tcp", broker)
		if err == nil {
			_, err = conn.Brokers()
			_ = conn.Close()
		}
		if err == nil {
			log.Info("connected to kafka", zap.String("broker", broker))
			return &kafkago.Writer{
				Addr:                   kafkago.TCP(broker),
				Balancer:               &kafkago.Hash{},
				RequiredAcks:           kafkago.RequireAll,
				AllowAutoTopicCreation: true,
				BatchTimeout:           50 * time.Millisecond,
			}, nil
		}

		lastErr = err
		log.Warn("kafka dial failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("kafka connection failed after %d retries: %w", maxRetries, lastErr)
}

// ReaderFor builds a consumer-group reader that commits offsets explicitly.
func ReaderFor(cfg config.KafkaConfig, topic string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Broker},
		Topic:          topic,
		GroupID:        cfg.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
		Dialer:         &kafkago.Dialer{Timeout: 10 * time.Second, DualStack: true},
	})
}
