package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore: сессии в Redis, чтобы несколько экземпляров бота видели одно состояние.
type RedisStore[T any] struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore[T any](client *redis.Client, ttl time.Duration) *RedisStore[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore[T]{client: client, ttl: ttl}
}

// DialRedis создаёт клиента и проверяет соединение.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (s *RedisStore[T]) Load(ctx context.Context, chatID int64) (T, bool, error) {
	var zero T
	raw, err := s.client.Get(ctx, key(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("session: redis get: %w", err)
	}
	out, err := decode[T](raw)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// Save продлевает TTL при каждой записи.
func (s *RedisStore[T]) Save(ctx context.Context, chatID int64, v T) error {
	raw, err := encode(v)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key(chatID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore[T]) Delete(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, key(chatID)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
