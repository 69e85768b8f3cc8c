package handlers

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/gradebook-bot/internal/console"
	"github.com/Spok95/gradebook-bot/internal/export"
	"github.com/Spok95/gradebook-bot/internal/logging"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/observability"
	"github.com/Spok95/gradebook-bot/internal/tg"
	"github.com/Spok95/gradebook-bot/internal/view"
)

const pendingExport = "export"

// export выгружает записи с текущими фильтрами страницы записей в .xlsx.
func (h *Handler) export(ctx context.Context, chatID int64, sess Session) {
	log := logging.FromContext(ctx, h.log)
	if !fsmutil.SetPending(chatID, pendingExport) {
		_, _ = tg.Send(h.bot, tgbotapi.NewMessage(chatID, "⏳ Выгрузка уже готовится, подождите."))
		return
	}
	defer fsmutil.ClearPending(chatID, pendingExport)

	f := sess.Console.Filter(models.KindRecord)
	records, err := h.gw.ListRecords(ctx, f)
	if err != nil {
		log.Warn("export: list records", zap.Error(err))
		_, _ = tg.Send(h.bot, tgbotapi.NewMessage(chatID, console.MsgLoadFailed))
		return
	}
	data, err := export.RecordsWorkbook(records)
	if err != nil {
		log.Error("export: build workbook", zap.Error(err))
		observability.CaptureErrCtx(ctx, err)
		_, _ = tg.Send(h.bot, tgbotapi.NewMessage(chatID, "❌ Не удалось сформировать файл"))
		return
	}

	course := ""
	if f.CourseID > 0 {
		course = selectedLabel(sess.Screen.Options[console.OptionsCourseFilter], "")
	}
	if course == "" {
		course = view.AllCourses
	}
	name := export.RecordsFileName(time.Now(), course)

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = fmt.Sprintf("📥 Записей: %d", len(records))
	if _, err := tg.Send(h.bot, doc); err != nil {
		log.Warn("export: send document", zap.Error(err))
	}

	if h.uploader == nil {
		return
	}
	link, err := h.uploader.Upload(ctx, name, export.ContentTypeXLSX, data)
	if err != nil {
		log.Warn("export: upload", zap.Error(err))
		observability.CaptureErrCtx(ctx, err)
		return
	}
	m := tgbotapi.NewMessage(chatID, "🔗 Ссылка на файл (действует сутки):\n"+link)
	m.DisableWebPagePreview = true
	_, _ = tg.Send(h.bot, m)
}
