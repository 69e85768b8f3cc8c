package app

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/ctxutil"
	"github.com/Spok95/gradebook-bot/internal/logging"
	"github.com/Spok95/gradebook-bot/internal/metrics"
	"github.com/Spok95/gradebook-bot/internal/observability"
	"github.com/Spok95/gradebook-bot/internal/tg"
)

// UpdateHandler: обработчик апдейтов консоли.
type UpdateHandler interface {
	HandleMessage(ctx context.Context, msg *tgbotapi.Message)
	HandleCallback(ctx context.Context, q *tgbotapi.CallbackQuery)
}

// Dispatcher раскладывает апдейты по чатам: разные чаты обрабатываются параллельно,
// апдейты одного чата строго по очереди.
type Dispatcher struct {
	bot     tg.Bot
	h       UpdateHandler
	lim     *ChatLimiter
	isAdmin func(userID int64) bool
	log     *zap.Logger
}

func NewDispatcher(bot tg.Bot, h UpdateHandler, isAdmin func(int64) bool, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if isAdmin == nil {
		isAdmin = func(int64) bool { return true }
	}
	return &Dispatcher{bot: bot, h: h, lim: NewChatLimiter(), isAdmin: isAdmin, log: log}
}

const msgDenied = "🚫 Доступ к консоли закрыт. Обратитесь к администратору."

// Run читает апдейты до закрытия канала или отмены ctx.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			go d.Dispatch(ctx, upd)
		}
	}
}

// Dispatch обрабатывает один апдейт. Паника не роняет бота: уходит в лог и Sentry.
func (d *Dispatcher) Dispatch(ctx context.Context, upd tgbotapi.Update) {
	chatID, userID, ok := route(upd)
	if !ok {
		return
	}
	metrics.BotUpdates.Inc()

	ctx = ctxutil.WithUserID(ctxutil.WithChatID(ctx, chatID), userID)
	ctx, cancel := ctxutil.WithTimeout(ctx, ctxutil.DefaultUpdateTimeout)
	defer cancel()

	d.lim.Do(chatID, func() { d.handle(ctx, upd, chatID, userID) })
}

func (d *Dispatcher) handle(ctx context.Context, upd tgbotapi.Update, chatID, userID int64) {
	defer func() {
		if r := recover(); r != nil {
			err := observability.PanicErr(r)
			metrics.HandlerErrors.Inc()
			logging.FromContext(ctx, d.log).Error("update handler panic", zap.Error(err))
			observability.CaptureErrCtx(ctx, err)
		}
	}()

	if !d.isAdmin(userID) {
		d.deny(upd, chatID)
		return
	}

	if upd.CallbackQuery != nil {
		ctx = ctxutil.WithOp(ctx, "callback")
		d.h.HandleCallback(ctx, upd.CallbackQuery)
		return
	}
	ctx = ctxutil.WithOp(ctx, "message")
	d.h.HandleMessage(ctx, upd.Message)
}

func (d *Dispatcher) deny(upd tgbotapi.Update, chatID int64) {
	if q := upd.CallbackQuery; q != nil {
		_, _ = tg.Request(d.bot, tgbotapi.NewCallback(q.ID, "Доступ закрыт"))
	}
	msg := tgbotapi.NewMessage(chatID, msgDenied)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, _ = tg.Send(d.bot, msg)
}

// route возвращает чат и отправителя; false значит, что апдейт консоли не интересен.
func route(upd tgbotapi.Update) (chatID, userID int64, ok bool) {
	if q := upd.CallbackQuery; q != nil {
		if q.Message == nil || q.Message.Chat == nil || q.From == nil {
			return 0, 0, false
		}
		return q.Message.Chat.ID, q.From.ID, true
	}
	m := upd.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return 0, 0, false
	}
	userID = m.Chat.ID
	if m.From != nil {
		userID = m.From.ID
	}
	return m.Chat.ID, userID, true
}
