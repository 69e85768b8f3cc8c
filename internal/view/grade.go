package view

import "strings"

const NotGraded = "Не оценено"

// GradeTag: визуальная метка оценки.
type GradeTag struct {
	Class string // grade-5 … grade-2, grade-na
	Text  string
}

var gradeMarks = map[string]string{
	"grade-5":  "🟢",
	"grade-4":  "🔵",
	"grade-3":  "🟡",
	"grade-2":  "🔴",
	"grade-na": "⚪",
}

func (g GradeTag) String() string {
	return gradeMarks[g.Class] + " " + g.Text
}

// RenderGrade: пять известных значений получают свою метку,
// пустое становится «не оценено», всё остальное показывается как есть.
func RenderGrade(grade string) GradeTag {
	switch grade {
	case "":
		return GradeTag{Class: "grade-na", Text: NotGraded}
	case "5", "4", "3", "2":
		return GradeTag{Class: "grade-" + grade, Text: grade}
	}
	return GradeTag{Class: "grade-na", Text: grade}
}

// Grades: варианты выбора оценки в форме записи; пустая строка означает «без оценки».
var Grades = []string{"", "5", "4", "3", "2"}

// GradeLabel: подпись варианта оценки в форме.
func GradeLabel(g string) string {
	if strings.TrimSpace(g) == "" {
		return NotGraded
	}
	return g
}
