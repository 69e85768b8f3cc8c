package fsmutil

import (
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/gradebook-bot/internal/tg"
)

// pending: защита от повторного запуска тяжёлых действий (выгрузка).
// chatID → имя действия.
var pending = struct {
	mu sync.Mutex
	m  map[int64]string
}{
	m: make(map[int64]string),
}

// SetPending помечает чат как занятый действием key.
// false: в чате уже что-то выполняется.
func SetPending(chatID int64, key string) bool {
	pending.mu.Lock()
	defer pending.mu.Unlock()

	if _, ok := pending.m[chatID]; ok {
		return false
	}
	pending.m[chatID] = key
	return true
}

// ClearPending снимает флаг, если ключ совпал.
func ClearPending(chatID int64, key string) {
	pending.mu.Lock()
	defer pending.mu.Unlock()

	if cur, ok := pending.m[chatID]; ok && cur == key {
		delete(pending.m, chatID)
	}
}

// DisableMarkup гасит inline-клавиатуру у старой страницы, чтобы по ней больше не кликали.
func DisableMarkup(bot tg.Bot, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: make([][]tgbotapi.InlineKeyboardButton, 0)}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty)
	_, _ = tg.Send(bot, edit)
}

// IsCancelText распознаёт текстовую отмену на шагах ввода ("Отмена", "/cancel", "cancel").
func IsCancelText(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "отмена" || s == "/cancel" || s == "cancel"
}
