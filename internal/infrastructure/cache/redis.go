package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"store-monitor/internal/config"
	"store-monitor/internal/logger"
)

var ErrUnavailable = errors.New("redis unavailable")

type Redis struct {
	client redis.UniversalClient
	logger *logrus.Logger

	warnedUnavailable atomic.Bool
}

// NewRedis connects to Redis. When the server cannot be reached the returned
// client runs in bypass mode: reads miss and plain writes are dropped.
func NewRedis(cfg config.RedisConfig, l *logrus.Logger) *Redis {
	l = logger.OrDefault(l)

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		l.WithError(err).Warn("[Cache] Redis unavailable, job status tracking disabled")
		_ = client.Close()
		return &Redis{client: nil, logger: l}
	}

	return &Redis{client: client, logger: l}
}

// NewWithClient wraps an existing client, used by tests and tools.
func NewWithClient(client redis.UniversalClient, l *logrus.Logger) *Redis {
	return &Redis{client: client, logger: logger.OrDefault(l)}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.WithError(err).Warn("[Cache] Redis command failed")
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.isUnavailable() {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// SetJSONIfAbsent writes only when key does not exist. Unlike the other
// writes it reports ErrUnavailable in bypass mode, since the caller needs to
// know the record was never created.
func (r *Redis) SetJSONIfAbsent(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if r.isUnavailable() {
		return false, ErrUnavailable
	}
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	ok, err := r.client.SetNX(ctx, key, b, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return ok, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if r.isUnavailable() {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}
