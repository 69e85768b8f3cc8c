package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/gradebook-bot/internal/models"
)

// FieldType определяет, как поле вводится и проверяется.
type FieldType int

const (
	FieldText FieldType = iota
	FieldDate
	FieldStudent // выбор из списка студентов
	FieldCourse  // выбор из списка курсов
	FieldGrade   // выбор из view.Grades
)

type Field struct {
	Key   string
	Label string
	Type  FieldType
}

// FieldError: значение поля не подходит для отправки.
type FieldError struct {
	Field Field
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("поле «%s»: %v", e.Field.Label, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// kindOps: операции, которые отличаются у трёх видов сущностей.
// Выбирается один раз по Kind вместо ветвлений в каждом месте вызова.
type kindOps struct {
	fields  []Field
	fill    func(e models.Entity) map[string]string
	payload func(values map[string]string) (models.Payload, error)
	added   string
	// refresh: основной список вида и всё, что из него вычисляется.
	refresh func(ctx context.Context, c *Console)
}

var ops map[models.Kind]kindOps

// заполняется в init: замыкания вызывают методы Console, которые читают ops
func init() {
	ops = map[models.Kind]kindOps{
		models.KindStudent: {
			fields: []Field{
				{Key: "fio", Label: "ФИО", Type: FieldText},
				{Key: "date_of_birth", Label: "Дата рождения", Type: FieldDate},
				{Key: "phone", Label: "Телефон", Type: FieldText},
			},
			fill: func(e models.Entity) map[string]string {
				s := e.(models.Student)
				return map[string]string{"fio": s.FIO, "date_of_birth": s.DateOfBirth, "phone": models.Str(s.Phone)}
			},
			payload: func(v map[string]string) (models.Payload, error) {
				return models.StudentPayload{
					FIO:         strings.TrimSpace(v["fio"]),
					DateOfBirth: v["date_of_birth"],
					Phone:       strings.TrimSpace(v["phone"]),
				}, nil
			},
			added: "✅ Студент добавлен",
			refresh: func(ctx context.Context, c *Console) {
				c.RefreshView(ctx, models.KindStudent)
			},
		},
		models.KindCourse: {
			fields: []Field{
				{Key: "name", Label: "Название", Type: FieldText},
				{Key: "description", Label: "Описание", Type: FieldText},
				{Key: "teacher", Label: "Преподаватель", Type: FieldText},
			},
			fill: func(e models.Entity) map[string]string {
				co := e.(models.Course)
				return map[string]string{"name": co.Name, "description": models.Str(co.Description), "teacher": models.Str(co.Teacher)}
			},
			payload: func(v map[string]string) (models.Payload, error) {
				return models.CoursePayload{
					Name:        strings.TrimSpace(v["name"]),
					Description: strings.TrimSpace(v["description"]),
					Teacher:     strings.TrimSpace(v["teacher"]),
				}, nil
			},
			added: "✅ Курс добавлен",
			// фильтр курсов на странице записей и набор преподавателей считаются из курсов
			refresh: func(ctx context.Context, c *Console) {
				c.RefreshView(ctx, models.KindCourse)
				c.RefreshCourseFilter(ctx)
				c.RefreshTeacherFilter(ctx)
			},
		},
		models.KindRecord: {
			fields: []Field{
				{Key: "id_student", Label: "Студент", Type: FieldStudent},
				{Key: "course_id", Label: "Курс", Type: FieldCourse},
				{Key: "date", Label: "Дата", Type: FieldDate},
				{Key: "grade", Label: "Оценка", Type: FieldGrade},
			},
			fill: func(e models.Entity) map[string]string {
				r := e.(models.Record)
				return map[string]string{
					"id_student": strconv.FormatInt(r.StudentID, 10),
					"course_id":  strconv.FormatInt(r.CourseID, 10),
					"date":       r.Date,
					"grade":      models.Str(r.Grade),
				}
			},
			payload: func(v map[string]string) (models.Payload, error) {
				sid, err := parseRef(v["id_student"])
				if err != nil {
					return nil, &FieldError{Field: fieldOf(models.KindRecord, "id_student"), Err: err}
				}
				cid, err := parseRef(v["course_id"])
				if err != nil {
					return nil, &FieldError{Field: fieldOf(models.KindRecord, "course_id"), Err: err}
				}
				return models.RecordPayload{StudentID: sid, CourseID: cid, Date: v["date"], Grade: v["grade"]}, nil
			},
			added: "✅ Запись добавлена",
			refresh: func(ctx context.Context, c *Console) {
				c.RefreshView(ctx, models.KindRecord)
			},
		},
	}
}

// Fields: поля формы вида kind в порядке показа.
func Fields(kind models.Kind) []Field {
	return ops[kind].fields
}

func fieldOf(kind models.Kind, key string) Field {
	for _, f := range ops[kind].fields {
		if f.Key == key {
			return f
		}
	}
	return Field{Key: key, Label: key}
}

func parseRef(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("не выбрано значение")
	}
	return id, nil
}
