package ctxutil

import (
	"context"
	"time"
)

type key int

const (
	keyChatID key = iota
	keyUserID
	keyOpName
)

// WithChatID / ChatID: чат, из которого пришёл апдейт.
func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, keyChatID, chatID)
}

func ChatID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(keyChatID).(int64)
	return id, ok
}

// WithUserID / UserID: Telegram ID администратора.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(keyUserID).(int64)
	return id, ok
}

// WithOp / Op: имя операции консоли или ручки API для логов.
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(keyOpName).(string)
	return s, ok
}

var (
	// DefaultDBTimeout: запрос recordsd к Postgres.
	DefaultDBTimeout = 5 * time.Second
	// DefaultUpdateTimeout: обработка одного апдейта целиком, включая все запросы к API.
	DefaultUpdateTimeout = 60 * time.Second
)

// WithTimeout: при d<=0 таймаута нет.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

// WithDBTimeout не продлевает дедлайн родителя.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		if remain := time.Until(dl); remain < DefaultDBTimeout {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
