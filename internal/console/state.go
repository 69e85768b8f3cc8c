package console

import (
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/view"
)

// State: всё, что консоль помнит между действиями пользователя. Сущности сюда
// попадают только как «последняя выборка» таблицы выбора: по ней строка
// превращается в полный набор полей формы.
type State struct {
	Records  RecordsQuery  `json:"records"`
	Students StudentsQuery `json:"students"`
	Courses  CoursesQuery  `json:"courses"`

	CourseFilter  []view.Option `json:"course_filter,omitempty"`
	TeacherFilter []view.Option `json:"teacher_filter,omitempty"`

	Editor EditorState `json:"editor"`
	Delete DeleteState `json:"delete"`

	Seq map[string]uint64 `json:"seq,omitempty"`
}

type RecordsQuery struct {
	Query    string           `json:"q,omitempty"`
	CourseID int64            `json:"course_id,omitempty"`
	Sort     models.SortOrder `json:"sort,omitempty"`
}

type StudentsQuery struct {
	Query string           `json:"q,omitempty"`
	Sort  models.SortOrder `json:"sort,omitempty"`
}

type CoursesQuery struct {
	Query   string `json:"q,omitempty"`
	Teacher string `json:"teacher,omitempty"`
}

type EditorState struct {
	Kind    models.Kind           `json:"kind,omitempty"`
	Forms   map[models.Kind]*Form `json:"forms,omitempty"`
	Fetched Fetched               `json:"fetched"`

	StudentOptions []view.Option `json:"student_options,omitempty"`
	CourseOptions  []view.Option `json:"course_options,omitempty"`
}

// Fetched: последняя выборка таблицы выбора на странице добавления.
type Fetched struct {
	Kind     models.Kind      `json:"kind,omitempty"`
	Students []models.Student `json:"students,omitempty"`
	Courses  []models.Course  `json:"courses,omitempty"`
	Records  []models.Record  `json:"records,omitempty"`
}

func (f Fetched) Find(id int64) (models.Entity, bool) {
	switch f.Kind {
	case models.KindStudent:
		for _, s := range f.Students {
			if s.ID == id {
				return s, true
			}
		}
	case models.KindCourse:
		for _, c := range f.Courses {
			if c.ID == id {
				return c, true
			}
		}
	case models.KindRecord:
		for _, r := range f.Records {
			if r.ID == id {
				return r, true
			}
		}
	}
	return nil, false
}

func fetchedFrom(kind models.Kind, items []models.Entity) Fetched {
	f := Fetched{Kind: kind}
	for _, it := range items {
		switch e := it.(type) {
		case models.Student:
			f.Students = append(f.Students, e)
		case models.Course:
			f.Courses = append(f.Courses, e)
		case models.Record:
			f.Records = append(f.Records, e)
		}
	}
	return f
}

type DeleteState struct {
	Kind    models.Kind    `json:"kind,omitempty"`
	Table   view.Table     `json:"table"`
	Confirm *DeleteConfirm `json:"confirm,omitempty"`
}

// DeleteConfirm: кнопка подтверждения, привязанная к строке и виду сущности.
type DeleteConfirm struct {
	Kind models.Kind `json:"kind"`
	ID   int64       `json:"id"`
}

func NewState() *State {
	st := &State{}
	st.normalize()
	return st
}

func (st *State) normalize() {
	if st.Seq == nil {
		st.Seq = map[string]uint64{}
	}
	if st.Editor.Forms == nil {
		st.Editor.Forms = map[models.Kind]*Form{}
	}
	for kind, f := range st.Editor.Forms {
		if f == nil {
			delete(st.Editor.Forms, kind)
			continue
		}
		if f.Values == nil {
			f.Values = map[string]string{}
		}
	}
	if st.Records.Sort == "" {
		st.Records.Sort = models.SortDefault
	}
	if st.Students.Sort == "" {
		st.Students.Sort = models.SortDefault
	}
}

// form возвращает форму вида kind, создавая пустую при первом обращении.
func (st *State) form(kind models.Kind) *Form {
	f, ok := st.Editor.Forms[kind]
	if !ok || f == nil {
		f = newForm(kind)
		st.Editor.Forms[kind] = f
	}
	if f.Values == nil {
		f.Values = map[string]string{}
	}
	return f
}
