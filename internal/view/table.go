package view

import (
	"strconv"
	"strings"

	"github.com/Spok95/gradebook-bot/internal/models"
)

// Table: готовое к показу содержимое таблицы. Каждый рендер целиком заменяет предыдущий.
type Table struct {
	Title  string
	Header []string
	Rows   []Row
}

type Row struct {
	ID       int64
	Cells    []string
	Selected bool
}

func (r Row) String() string {
	return strings.Join(r.Cells, " | ")
}

// Select отмечает ровно одну строку; отметка с остальных снимается.
func (t Table) Select(id int64) Table {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		r.Selected = r.ID == id
		rows[i] = r
	}
	t.Rows = rows
	return t
}

// Selector: контекст таблицы выбора на страницах добавления и удаления.
type Selector int

const (
	SelectorAdd Selector = iota
	SelectorDelete
)

var (
	recordsHeader  = []string{"Студент", "Курс", "Дата", "Оценка"}
	studentsHeader = []string{"ФИО", "Дата рождения", "Телефон"}
	coursesHeader  = []string{"Название", "Описание", "Преподаватель"}
)

func RecordsTable(records []models.Record) Table {
	t := Table{Title: "📋 Записи", Header: recordsHeader}
	for _, r := range records {
		t.Rows = append(t.Rows, Row{ID: r.ID, Cells: []string{
			models.Str(r.StudentFIO),
			models.Str(r.CourseName),
			FormatDate(r.Date),
			RenderGrade(models.Str(r.Grade)).String(),
		}})
	}
	return t
}

func StudentsTable(students []models.Student) Table {
	t := Table{Title: "👨‍🎓 Студенты", Header: studentsHeader}
	for _, s := range students {
		t.Rows = append(t.Rows, Row{ID: s.ID, Cells: []string{s.FIO, FormatDate(s.DateOfBirth), models.Str(s.Phone)}})
	}
	return t
}

func CoursesTable(courses []models.Course) Table {
	t := Table{Title: "📚 Курсы", Header: coursesHeader}
	for _, c := range courses {
		t.Rows = append(t.Rows, Row{ID: c.ID, Cells: []string{c.Name, models.Str(c.Description), models.Str(c.Teacher)}})
	}
	return t
}

// SelectorTable строит таблицу выбора. На странице добавления колонки полные
// (у записей оценка без метки), на странице удаления сокращённые.
func SelectorTable(kind models.Kind, sel Selector, items []models.Entity) Table {
	t := Table{Title: kind.Title()}
	switch kind {
	case models.KindStudent:
		t.Header = studentsHeader
		if sel == SelectorDelete {
			t.Header = studentsHeader[:2]
		}
	case models.KindCourse:
		t.Header = coursesHeader
		if sel == SelectorDelete {
			t.Header = []string{"Название", "Преподаватель"}
		}
	default:
		t.Header = recordsHeader
		if sel == SelectorDelete {
			t.Header = recordsHeader[:3]
		}
	}
	for _, it := range items {
		t.Rows = append(t.Rows, Row{ID: it.EntityID(), Cells: selectorCells(it, sel)})
	}
	return t
}

func selectorCells(it models.Entity, sel Selector) []string {
	switch e := it.(type) {
	case models.Student:
		if sel == SelectorDelete {
			return []string{e.FIO, FormatDate(e.DateOfBirth)}
		}
		return []string{e.FIO, FormatDate(e.DateOfBirth), models.Str(e.Phone)}
	case models.Course:
		if sel == SelectorDelete {
			return []string{e.Name, models.Str(e.Teacher)}
		}
		return []string{e.Name, models.Str(e.Description), models.Str(e.Teacher)}
	case models.Record:
		cells := []string{models.Str(e.StudentFIO), models.Str(e.CourseName), FormatDate(e.Date)}
		if sel == SelectorDelete {
			return cells
		}
		return append(cells, models.Str(e.Grade))
	}
	return []string{"#" + strconv.FormatInt(it.EntityID(), 10)}
}
