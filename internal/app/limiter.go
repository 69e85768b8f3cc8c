package app

import "sync"

// ChatLimiter не даёт двум апдейтам одного чата менять сессию одновременно.
type ChatLimiter struct {
	mu   sync.Mutex
	byID map[int64]*sync.Mutex
}

func NewChatLimiter() *ChatLimiter {
	return &ChatLimiter{byID: make(map[int64]*sync.Mutex)}
}

// Do выполняет fn под замком чата. Разные чаты друг друга не ждут.
func (l *ChatLimiter) Do(chatID int64, fn func()) {
	l.mu.Lock()
	m, ok := l.byID[chatID]
	if !ok {
		m = &sync.Mutex{}
		l.byID[chatID] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	fn()
}
