package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/bot/menu"
	"github.com/Spok95/gradebook-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/gradebook-bot/internal/console"
	"github.com/Spok95/gradebook-bot/internal/logging"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/observability"
	"github.com/Spok95/gradebook-bot/internal/session"
	"github.com/Spok95/gradebook-bot/internal/tg"
	"github.com/Spok95/gradebook-bot/internal/view"
)

// Uploader: внешнее хранилище выгрузок. Возвращает ссылку на скачивание.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Handler связывает чат Telegram с консолью: апдейт → операция консоли → перерисовка страницы.
type Handler struct {
	bot      tg.Bot
	gw       console.Gateway
	sessions session.Store[Session]
	uploader Uploader
	log      *zap.Logger
}

// New: uploader может быть nil, тогда выгрузка уходит только документом.
func New(bot tg.Bot, gw console.Gateway, sessions session.Store[Session], uploader Uploader, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{bot: bot, gw: gw, sessions: sessions, uploader: uploader, log: log}
}

const (
	msgWelcome = "👋 Консоль учёта успеваемости.\nВыберите раздел в меню."
	msgUnknown = "⚠️ Неизвестная команда. Используйте /start"
	msgStale   = "Это меню устарело, откройте раздел заново"
	msgCancel  = "🚫 Отменено"
)

// HandleMessage обрабатывает текст из чата: команды, кнопки меню и ожидаемый ввод.
func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if text == "/start" {
		h.start(ctx, chatID)
		return
	}

	sess := h.load(ctx, chatID)
	c := h.console(ctx, sess)
	scr := sess.Screen

	switch {
	case fsmutil.IsCancelText(text):
		if scr.Awaiting == "" && scr.Expanded == "" {
			c.CancelEdit()
		}
		scr.Awaiting = ""
		scr.Expanded = ""
		scr.Notify(msgCancel)
	case text == menu.Records || text == "/records":
		scr.Open(PageRecords)
		c.RefreshCourseFilter(ctx)
		c.OpenView(ctx, models.KindRecord)
	case text == menu.Students || text == "/students":
		scr.Open(PageStudents)
		c.OpenView(ctx, models.KindStudent)
	case text == menu.Courses || text == "/courses":
		scr.Open(PageCourses)
		c.RefreshTeacherFilter(ctx)
		c.OpenView(ctx, models.KindCourse)
	case text == menu.Editor || text == "/edit":
		scr.Open(PageEditor)
		c.SelectKind(ctx, c.EditorKind())
	case text == menu.Delete || text == "/delete":
		scr.Open(PageDelete)
		c.SelectDeleteKind(ctx, c.DeleteKind())
	case text == menu.Export || text == "/export":
		h.export(ctx, chatID, sess)
		h.save(ctx, chatID, sess)
		return
	case scr.Awaiting != "":
		h.input(ctx, c, scr, text)
	default:
		_, _ = tg.Send(h.bot, tgbotapi.NewMessage(chatID, msgUnknown))
		return
	}

	for _, n := range scr.TakeNotes() {
		_, _ = tg.Send(h.bot, tgbotapi.NewMessage(chatID, n))
	}
	h.show(chatID, scr, sess.Console, true)
	h.save(ctx, chatID, sess)
}

// HandleCallback: нажатие inline-кнопки на странице консоли.
func (h *Handler) HandleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.Message == nil {
		h.answer(q, "")
		return
	}
	chatID := q.Message.Chat.ID
	act, ok := ParseAction(q.Data)
	if !ok {
		h.answer(q, msgUnknown)
		return
	}
	if act.Name == actNoop {
		h.answer(q, "")
		return
	}

	sess := h.load(ctx, chatID)
	scr := sess.Screen
	if q.Message.MessageID != scr.MessageID {
		h.answer(q, msgStale)
		fsmutil.DisableMarkup(h.bot, chatID, q.Message.MessageID)
		return
	}

	c := h.console(ctx, sess)
	h.apply(ctx, c, scr, act)

	h.answer(q, strings.Join(scr.TakeNotes(), "\n"))
	h.show(chatID, scr, sess.Console, false)
	h.save(ctx, chatID, sess)
}

func (h *Handler) apply(ctx context.Context, c *console.Console, scr *Screen, act Action) {
	switch act.Name {
	case actSort:
		scr.Offset = 0
		order := models.ParseSortOrder(act.Arg(1))
		if models.ParseKind(act.Arg(0)) == models.KindStudent {
			c.SetStudentsSort(ctx, order)
		} else {
			c.SetRecordsSort(ctx, order)
		}
	case actSearch:
		scr.Awaiting = awaitSearchFor(models.ParseKind(act.Arg(0)))
	case actClear:
		scr.Offset = 0
		scr.Awaiting = ""
		setQuery(ctx, c, models.ParseKind(act.Arg(0)), "")
	case actExpand:
		scr.Awaiting = ""
		scr.Offset = 0
		if act.Arg(0) == expandGrade {
			if c.EditorKind() == models.KindRecord {
				scr.Expanded = expandGrade
			}
			return
		}
		if _, ok := parseOptionsTarget(act.Arg(0)); ok {
			scr.Expanded = act.Arg(0)
		}
	case actCollapse:
		scr.Expanded = ""
		scr.Offset = 0
	case actOption:
		h.pickOption(ctx, c, scr, act)
	case actGrade:
		i, ok := act.Int(0)
		scr.Expanded = ""
		if !ok || i < 0 || i >= len(view.Grades) {
			return
		}
		if err := c.SetField("grade", view.Grades[i]); err != nil {
			scr.Notify("⚠️ " + err.Error())
		}
	case actAddKind:
		scr.Open(PageEditor)
		c.SelectKind(ctx, models.ParseKind(act.Arg(0)))
	case actDelKind:
		scr.Open(PageDelete)
		c.SelectDeleteKind(ctx, models.ParseKind(act.Arg(0)))
	case actPick:
		if id, ok := act.ID(0); ok {
			c.Pick(id)
		}
	case actField:
		if kind := c.EditorKind(); kind.Valid() {
			scr.Awaiting = awaitFieldFor(kind, act.Arg(0))
		}
	case actSubmit:
		scr.Awaiting = ""
		if err := c.Submit(ctx); err != nil {
			logging.FromContext(ctx, h.log).Debug("submit rejected", zap.Error(err))
		}
	case actCancelEdit:
		scr.Awaiting = ""
		c.CancelEdit()
	case actDelRow:
		if id, ok := act.ID(0); ok {
			c.SelectDeleteRow(id)
		}
	case actDeleteOK:
		if err := c.ConfirmDelete(ctx); err != nil {
			logging.FromContext(ctx, h.log).Debug("delete rejected", zap.Error(err))
		}
	case actPage:
		if n, ok := act.Int(0); ok && n >= 0 {
			scr.Offset = n
		}
	case actRefresh:
		h.refresh(ctx, c, scr)
	default:
		scr.Notify(msgUnknown)
	}
}

func (h *Handler) pickOption(ctx context.Context, c *console.Console, scr *Screen, act Action) {
	target, ok := parseOptionsTarget(act.Arg(0))
	i, ok2 := act.Int(1)
	scr.Expanded = ""
	scr.Offset = 0
	opts := scr.Options[target]
	if !ok || !ok2 || i < 0 || i >= len(opts) {
		return
	}
	v := opts[i].Value
	switch target {
	case console.OptionsCourseFilter:
		c.SetRecordsCourse(ctx, v)
	case console.OptionsTeacherFilter:
		c.SetCoursesTeacher(ctx, v)
	case console.OptionsRecordStudent:
		if err := c.SetField("id_student", v); err != nil {
			scr.Notify("⚠️ " + err.Error())
		}
	case console.OptionsRecordCourse:
		if err := c.SetField("course_id", v); err != nil {
			scr.Notify("⚠️ " + err.Error())
		}
	}
}

func (h *Handler) refresh(ctx context.Context, c *console.Console, scr *Screen) {
	switch scr.Page {
	case PageStudents:
		c.RefreshView(ctx, models.KindStudent)
	case PageCourses:
		c.RefreshTeacherFilter(ctx)
		c.RefreshView(ctx, models.KindCourse)
	case PageEditor:
		c.SelectKind(ctx, c.EditorKind())
	case PageDelete:
		c.SelectDeleteKind(ctx, c.DeleteKind())
	default:
		c.RefreshCourseFilter(ctx)
		c.RefreshView(ctx, models.KindRecord)
	}
}

// input принимает текст, которого ждала страница (строку поиска или значение поля формы).
func (h *Handler) input(ctx context.Context, c *console.Console, scr *Screen, text string) {
	name, arg, _ := strings.Cut(scr.Awaiting, ":")
	switch name {
	case awaitSearch:
		scr.Awaiting = ""
		scr.Offset = 0
		setQuery(ctx, c, models.ParseKind(arg), text)
	case awaitField:
		kind, key, _ := strings.Cut(arg, ":")
		if c.EditorKind() != models.ParseKind(kind) {
			scr.Awaiting = ""
			return
		}
		if err := c.SetField(key, text); err != nil {
			// ждём исправленное значение
			scr.Notify("⚠️ " + err.Error())
			return
		}
		scr.Awaiting = ""
	default:
		scr.Awaiting = ""
	}
}

func setQuery(ctx context.Context, c *console.Console, kind models.Kind, q string) {
	switch kind {
	case models.KindStudent:
		c.SetStudentsQuery(ctx, q)
	case models.KindCourse:
		c.SetCoursesQuery(ctx, q)
	default:
		c.SetRecordsQuery(ctx, q)
	}
}

func (h *Handler) start(ctx context.Context, chatID int64) {
	if err := h.sessions.Delete(ctx, chatID); err != nil {
		logging.FromContext(ctx, h.log).Warn("session delete failed", zap.Error(err))
	}
	m := tgbotapi.NewMessage(chatID, msgWelcome)
	m.ReplyMarkup = menu.AdminMenu()
	_, _ = tg.Send(h.bot, m)

	// списки и фильтры загружаются сразу, первая страница открывается из сессии
	sess := NewSession()
	h.console(ctx, sess).Init(ctx)
	for _, n := range sess.Screen.TakeNotes() {
		_, _ = tg.Send(h.bot, tgbotapi.NewMessage(chatID, n))
	}
	h.save(ctx, chatID, sess)
}

// show рисует страницу: правкой текущего сообщения или новым сообщением внизу чата.
func (h *Handler) show(chatID int64, scr *Screen, st *console.State, resend bool) {
	text, kb := Render(st, scr)
	if !resend && scr.MessageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, scr.MessageID, text, kb)
		edit.ParseMode = tgbotapi.ModeHTML
		_, err := tg.Send(h.bot, edit)
		if err == nil || tg.IsNotModified(err) {
			return
		}
		h.log.Warn("page edit failed, resending", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	fsmutil.DisableMarkup(h.bot, chatID, scr.MessageID)
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.ReplyMarkup = kb
	sent, err := tg.Send(h.bot, m)
	if err != nil {
		h.log.Warn("page send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	scr.MessageID = sent.MessageID
}

func (h *Handler) answer(q *tgbotapi.CallbackQuery, text string) {
	_, _ = tg.Request(h.bot, tgbotapi.NewCallback(q.ID, text))
}

func (h *Handler) console(ctx context.Context, sess Session) *console.Console {
	return console.New(h.gw, sess.Screen, sess.Console, logging.FromContext(ctx, h.log))
}

func (h *Handler) load(ctx context.Context, chatID int64) Session {
	sess, ok, err := h.sessions.Load(ctx, chatID)
	if err != nil {
		logging.FromContext(ctx, h.log).Warn("session load failed", zap.Error(err))
		observability.CaptureErrCtx(ctx, err)
	}
	if !ok || err != nil {
		sess = NewSession()
	}
	sess.normalize()
	return sess
}

func (h *Handler) save(ctx context.Context, chatID int64, sess Session) {
	if err := h.sessions.Save(ctx, chatID, sess); err != nil {
		logging.FromContext(ctx, h.log).Warn("session save failed", zap.Error(err))
		observability.CaptureErrCtx(ctx, err)
	}
}
