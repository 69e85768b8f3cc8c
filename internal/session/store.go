// Package session хранит состояние чата между апдейтами: в памяти процесса
// или в Redis, если ботов несколько.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store: состояние по chatID. Значение хранится сериализованным, поэтому
// изменения загруженной копии не видны без Save.
type Store[T any] interface {
	Load(ctx context.Context, chatID int64) (T, bool, error)
	Save(ctx context.Context, chatID int64, v T) error
	Delete(ctx context.Context, chatID int64) error
}

func key(chatID int64) string {
	return fmt.Sprintf("gradebook:session:%d", chatID)
}

func decode[T any](raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("session: decode: %w", err)
	}
	return v, nil
}

func encode[T any](v T) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("session: encode: %w", err)
	}
	return raw, nil
}

// DefaultTTL: сколько живёт неактивная сессия.
const DefaultTTL = 24 * time.Hour
