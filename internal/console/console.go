// Package console реализует консоль администратора без привязки к транспорту:
// фильтры и сортировка списков, переключение форм добавления/редактирования
// и удаление. Источник истины здесь REST API: после каждой мутации данные
// запрашиваются заново.
package console

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/gateway"
	"github.com/Spok95/gradebook-bot/internal/metrics"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/observability"
	"github.com/Spok95/gradebook-bot/internal/view"
)

// Gateway: то, что консоли нужно от REST API.
type Gateway interface {
	ListStudents(ctx context.Context, f gateway.Filter) ([]models.Student, error)
	ListCourses(ctx context.Context, f gateway.Filter) ([]models.Course, error)
	ListRecords(ctx context.Context, f gateway.Filter) ([]models.Record, error)
	List(ctx context.Context, kind models.Kind, f gateway.Filter) ([]models.Entity, error)
	Create(ctx context.Context, kind models.Kind, p models.Payload) error
	Update(ctx context.Context, kind models.Kind, id int64, p models.Payload) error
	Delete(ctx context.Context, kind models.Kind, id int64) error
}

// Target: таблица на экране.
type Target int

const (
	TargetRecords Target = iota + 1
	TargetStudents
	TargetCourses
	TargetAddList
	TargetDeleteList
)

// OptionsTarget: выпадающий список на экране.
type OptionsTarget int

const (
	OptionsCourseFilter OptionsTarget = iota + 1
	OptionsTeacherFilter
	OptionsRecordStudent
	OptionsRecordCourse
)

// Surface: место, куда консоль рисует. Каждый вызов полностью заменяет
// прежнее содержимое соответствующего элемента.
type Surface interface {
	ShowTable(target Target, t view.Table)
	ShowSort(target Target, segments []view.Segment)
	ShowOptions(target OptionsTarget, opts []view.Option)
	ShowForm(f Form)
	ShowDeleteConfirm(c *DeleteConfirm)
	Notify(text string)
}

// Console: контроллеры одного администратора (одного чата).
type Console struct {
	gw  Gateway
	ui  Surface
	log *zap.Logger

	mu sync.Mutex
	st *State
}

func New(gw Gateway, ui Surface, st *State, log *zap.Logger) *Console {
	if st == nil {
		st = NewState()
	}
	st.normalize()
	if log == nil {
		log = zap.NewNop()
	}
	return &Console{gw: gw, ui: ui, st: st, log: log}
}

// State возвращает текущее состояние для сохранения в сессии.
func (c *Console) State() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// begin выдаёт новый токен запроса для key. Ответ с устаревшим токеном отбрасывается:
// побеждает последний отправленный запрос, а не последний пришедший ответ.
func (c *Console) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Seq[key]++
	return c.st.Seq[key]
}

// finish применяет результат запроса под мьютексом, если токен ещё актуален.
func (c *Console) finish(ctx context.Context, key string, token uint64, err error, apply func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st.Seq[key] != token {
		c.log.Debug("stale response dropped", zap.String("key", key), zap.Uint64("token", token))
		return
	}
	if err != nil {
		c.log.Warn("load failed", zap.String("key", key), zap.Error(err))
		report(ctx, err)
		c.ui.Notify(MsgLoadFailed)
		return
	}
	apply()
}

// report учитывает ошибку API, которую консоль показала пользователю и не вернула выше.
// 5xx и ошибки транспорта уходят в Sentry, 4xx нет.
func report(ctx context.Context, err error) {
	metrics.HandlerErrors.Inc()
	if gateway.IsServerSide(err) {
		observability.CaptureErrCtx(ctx, err)
	}
}
