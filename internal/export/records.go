package export

import (
	"fmt"
	"strconv"

	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/view"
)

const (
	SheetRecords = "Записи"
	SheetSummary = "Сводка по курсам"
)

// RecordsSheets: лист записей в порядке сервера и сводка по курсам в порядке первого появления.
func RecordsSheets(records []models.Record) []SheetSpec {
	list := SheetSpec{
		Title:  SheetRecords,
		Header: []string{"ID", "Студент", "Курс", "Дата", "Оценка"},
	}
	type agg struct {
		name   string
		total  int
		graded int
		sum    int
	}
	var order []int64
	byCourse := map[int64]*agg{}

	for _, r := range records {
		grade := models.Str(r.Grade)
		list.Rows = append(list.Rows, []string{
			strconv.FormatInt(r.ID, 10),
			models.Str(r.StudentFIO),
			models.Str(r.CourseName),
			view.FormatDate(r.Date),
			view.GradeLabel(grade),
		})

		a, ok := byCourse[r.CourseID]
		if !ok {
			a = &agg{name: models.Str(r.CourseName)}
			byCourse[r.CourseID] = a
			order = append(order, r.CourseID)
		}
		a.total++
		if n, ok := gradePoints(grade); ok {
			a.graded++
			a.sum += n
		}
	}

	summary := SheetSpec{
		Title:  SheetSummary,
		Header: []string{"Курс", "Записей", "С оценкой", "Средний балл"},
	}
	for _, id := range order {
		a := byCourse[id]
		avg := "—"
		if a.graded > 0 {
			avg = fmt.Sprintf("%.2f", float64(a.sum)/float64(a.graded))
		}
		summary.Rows = append(summary.Rows, []string{
			cleanName(a.name), strconv.Itoa(a.total), strconv.Itoa(a.graded), avg,
		})
	}
	return []SheetSpec{list, summary}
}

// gradePoints: баллы только для оценок из формы (5..2); прочие значения в среднее не идут.
func gradePoints(grade string) (int, bool) {
	for _, g := range view.Grades {
		if g != "" && g == grade {
			n, err := strconv.Atoi(g)
			return n, err == nil
		}
	}
	return 0, false
}

// RecordsWorkbook: готовый .xlsx по записям.
func RecordsWorkbook(records []models.Record) ([]byte, error) {
	wb, err := NewWorkbook(RecordsSheets(records))
	if err != nil {
		return nil, err
	}
	defer func() { _ = wb.File.Close() }()
	return wb.Bytes()
}
