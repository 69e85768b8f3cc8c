package console

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/gateway"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/view"
)

// Mode: режим формы: добавление или редактирование. Активен ровно один.
type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// Form: явное состояние формы одного вида сущности.
type Form struct {
	Kind     models.Kind       `json:"kind"`
	Mode     Mode              `json:"mode"`
	TargetID int64             `json:"target_id,omitempty"`
	Values   map[string]string `json:"values"`
}

func newForm(kind models.Kind) *Form {
	return &Form{Kind: kind, Mode: ModeAdd, Values: map[string]string{}}
}

// AddVisible / EditVisible: какая из двух кнопок формы показана.
func (f Form) AddVisible() bool  { return f.Mode != ModeEdit }
func (f Form) EditVisible() bool { return f.Mode == ModeEdit }

const (
	keyAddList        = "list:add"
	keyStudentOptions = "opts:record_student"
	keyCourseOptions  = "opts:record_course"
)

// ErrNoForm: действие с формой до выбора вида сущности.
var ErrNoForm = errors.New("console: editor kind not selected")

// EditorKind: вид сущности, выбранный на странице добавления (0, если ещё не выбран).
func (c *Console) EditorKind() models.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Editor.Kind
}

// currentForm: копия формы выбранного вида.
func (c *Console) currentForm() (Form, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.st.Editor.Kind.Valid() {
		return Form{}, false
	}
	f := *c.st.form(c.st.Editor.Kind)
	return f, true
}

// SelectKind переключает форму добавления на вид kind: форма сбрасывается в режим
// добавления, таблица выбора и списки студентов/курсов перечитываются.
func (c *Console) SelectKind(ctx context.Context, kind models.Kind) {
	if !kind.Valid() {
		kind = models.KindRecord
	}
	c.mu.Lock()
	c.st.Editor.Kind = kind
	f := newForm(kind)
	c.st.Editor.Forms[kind] = f
	c.ui.ShowForm(*f)
	c.mu.Unlock()

	c.reloadAddList(ctx, kind)
	c.reloadFormOptions(ctx)
}

// Pick: клик по строке таблицы выбора: форма заполняется и переходит в режим
// редактирования. Если строки уже нет в последней выборке, ничего не происходит.
func (c *Console) Pick(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	kind := c.st.Editor.Kind
	if !kind.Valid() || c.st.Editor.Fetched.Kind != kind {
		return false
	}
	e, ok := c.st.Editor.Fetched.Find(id)
	if !ok {
		c.log.Debug("picked row is gone", zap.Stringer("kind", kind), zap.Int64("id", id))
		return false
	}
	f := &Form{Kind: kind, Mode: ModeEdit, TargetID: id, Values: ops[kind].fill(e)}
	c.st.Editor.Forms[kind] = f
	if kind == models.KindRecord {
		c.st.Editor.StudentOptions = markSelected(c.st.Editor.StudentOptions, f.Values["id_student"])
		c.st.Editor.CourseOptions = markSelected(c.st.Editor.CourseOptions, f.Values["course_id"])
		c.ui.ShowOptions(OptionsRecordStudent, c.st.Editor.StudentOptions)
		c.ui.ShowOptions(OptionsRecordCourse, c.st.Editor.CourseOptions)
	}
	c.ui.ShowForm(*f)
	return true
}

// SetField меняет значение поля текущей формы. Даты приводятся к ISO.
func (c *Console) SetField(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	kind := c.st.Editor.Kind
	if !kind.Valid() {
		return ErrNoForm
	}
	fld := fieldOf(kind, key)
	if fld.Type == FieldDate && strings.TrimSpace(value) != "" {
		iso, err := view.ParseDate(value)
		if err != nil {
			return &FieldError{Field: fld, Err: err}
		}
		value = iso
	}
	f := c.st.form(kind)
	f.Values[key] = value
	switch fld.Type {
	case FieldStudent:
		c.st.Editor.StudentOptions = markSelected(c.st.Editor.StudentOptions, value)
		c.ui.ShowOptions(OptionsRecordStudent, c.st.Editor.StudentOptions)
	case FieldCourse:
		c.st.Editor.CourseOptions = markSelected(c.st.Editor.CourseOptions, value)
		c.ui.ShowOptions(OptionsRecordCourse, c.st.Editor.CourseOptions)
	}
	c.ui.ShowForm(*f)
	return nil
}

// CancelEdit бросает редактирование без запроса: форма возвращается в режим добавления.
func (c *Console) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	kind := c.st.Editor.Kind
	if !kind.Valid() {
		return
	}
	f := newForm(kind)
	c.st.Editor.Forms[kind] = f
	c.ui.ShowForm(*f)
}

// Submit отправляет форму: create в режиме добавления, update в режиме редактирования.
// После успеха перечитываются таблица выбора и основной список вида.
func (c *Console) Submit(ctx context.Context) error {
	c.mu.Lock()
	kind := c.st.Editor.Kind
	if !kind.Valid() {
		c.mu.Unlock()
		return ErrNoForm
	}
	f := *c.st.form(kind)
	op := ops[kind]
	payload, err := op.payload(f.Values)
	if err != nil {
		c.ui.Notify("⚠️ Проверьте " + err.Error())
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if f.Mode == ModeEdit {
		err = c.gw.Update(ctx, kind, f.TargetID, payload)
	} else {
		err = c.gw.Create(ctx, kind, payload)
	}

	c.mu.Lock()
	if err != nil {
		c.log.Warn("submit failed", zap.Stringer("kind", kind), zap.String("mode", string(f.Mode)), zap.Error(err))
		report(ctx, err)
		if f.Mode == ModeEdit {
			c.ui.Notify(MsgSaveFailed)
		} else {
			c.ui.Notify(MsgAddFailed)
		}
		c.mu.Unlock()
		return err
	}
	if f.Mode == ModeEdit {
		c.ui.Notify(MsgSaved)
	} else {
		c.ui.Notify(op.added)
	}
	c.mu.Unlock()

	c.reloadAddList(ctx, kind)
	op.refresh(ctx, c)

	if f.Mode == ModeEdit {
		c.mu.Lock()
		// форму могли переключить, пока шёл запрос
		if cur := c.st.form(kind); cur.Mode == ModeEdit && cur.TargetID == f.TargetID {
			nf := newForm(kind)
			c.st.Editor.Forms[kind] = nf
			if c.st.Editor.Kind == kind {
				c.ui.ShowForm(*nf)
			}
		}
		c.mu.Unlock()
	}
	return nil
}

func (c *Console) reloadAddList(ctx context.Context, kind models.Kind) {
	token := c.begin(keyAddList)
	items, err := c.gw.List(ctx, kind, gateway.Filter{})
	c.finish(ctx, keyAddList, token, err, func() {
		c.st.Editor.Fetched = fetchedFrom(kind, items)
		c.ui.ShowTable(TargetAddList, view.SelectorTable(kind, view.SelectorAdd, items))
	})
}

// reloadFormOptions перечитывает студентов и курсы для формы записи, чтобы ссылки не устаревали.
func (c *Console) reloadFormOptions(ctx context.Context) {
	token := c.begin(keyStudentOptions)
	students, err := c.gw.ListStudents(ctx, gateway.Filter{})
	c.finish(ctx, keyStudentOptions, token, err, func() {
		sel := c.st.form(models.KindRecord).Values["id_student"]
		c.st.Editor.StudentOptions = markSelected(view.StudentOptions(students, 0), sel)
		c.ui.ShowOptions(OptionsRecordStudent, c.st.Editor.StudentOptions)
	})

	token = c.begin(keyCourseOptions)
	courses, err := c.gw.ListCourses(ctx, gateway.Filter{})
	c.finish(ctx, keyCourseOptions, token, err, func() {
		sel := c.st.form(models.KindRecord).Values["course_id"]
		c.st.Editor.CourseOptions = markSelected(view.CourseOptions(courses, 0, view.ChooseOne), sel)
		c.ui.ShowOptions(OptionsRecordCourse, c.st.Editor.CourseOptions)
	})
}
