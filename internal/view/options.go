package view

import (
	"strconv"
	"strings"

	"github.com/Spok95/gradebook-bot/internal/models"
)

// Option: элемент выпадающего списка (фильтр курса, преподавателя, выбор в форме записи).
type Option struct {
	Value    string
	Label    string
	Selected bool
}

const (
	AllCourses  = "Все курсы"
	AllTeachers = "Все преподаватели"
	ChooseOne   = "-- выберите --"
)

// CourseOptions: первая опция с пустым значением, затем курсы в порядке сервера.
func CourseOptions(courses []models.Course, selected int64, first string) []Option {
	out := []Option{{Value: "", Label: first, Selected: selected == 0}}
	for _, c := range courses {
		out = append(out, Option{
			Value:    strconv.FormatInt(c.ID, 10),
			Label:    c.Name,
			Selected: c.ID == selected,
		})
	}
	return out
}

// StudentOptions: список студентов для формы записи, без пустой опции.
func StudentOptions(students []models.Student, selected int64) []Option {
	out := make([]Option, 0, len(students))
	for _, s := range students {
		out = append(out, Option{
			Value:    strconv.FormatInt(s.ID, 10),
			Label:    s.FIO,
			Selected: s.ID == selected,
		})
	}
	return out
}

func TeacherOptions(teachers []string, selected string) []Option {
	out := []Option{{Value: "", Label: AllTeachers, Selected: selected == ""}}
	for _, t := range teachers {
		out = append(out, Option{Value: t, Label: t, Selected: t == selected})
	}
	return out
}

// Teachers: различные непустые преподаватели в порядке первого появления.
// Считается заново по полному списку курсов при каждом обновлении.
func Teachers(courses []models.Course) []string {
	seen := make(map[string]struct{}, len(courses))
	var out []string
	for _, c := range courses {
		t := models.Str(c.Teacher)
		if strings.TrimSpace(t) == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Segment: кнопка группы сортировки; активна ровно одна.
type Segment struct {
	Value  models.SortOrder
	Label  string
	Active bool
}

var sortLabels = []struct {
	v models.SortOrder
	l string
}{
	{models.SortDefault, "По умолчанию"},
	{models.SortAsc, "↑ По возрастанию"},
	{models.SortDesc, "↓ По убыванию"},
}

func Segments(active models.SortOrder) []Segment {
	out := make([]Segment, 0, len(sortLabels))
	for _, s := range sortLabels {
		out = append(out, Segment{Value: s.v, Label: s.l, Active: s.v == active})
	}
	return out
}
