package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore: сессии в памяти процесса, с истечением по TTL.
type MemoryStore[T any] struct {
	cache *cache.Cache
}

func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore[T]{cache: cache.New(ttl, ttl/2)}
}

func (s *MemoryStore[T]) Load(_ context.Context, chatID int64) (T, bool, error) {
	var zero T
	v, ok := s.cache.Get(key(chatID))
	if !ok {
		return zero, false, nil
	}
	raw, ok := v.([]byte)
	if !ok {
		return zero, false, nil
	}
	out, err := decode[T](raw)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, chatID int64, v T) error {
	raw, err := encode(v)
	if err != nil {
		return err
	}
	s.cache.Set(key(chatID), raw, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, chatID int64) error {
	s.cache.Delete(key(chatID))
	return nil
}

// Len: число живых сессий.
func (s *MemoryStore[T]) Len() int {
	return s.cache.ItemCount()
}
