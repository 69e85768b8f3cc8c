package models

// Entity: общий интерфейс трёх сущностей.
type Entity interface {
	EntityID() int64
	EntityKind() Kind
}

type Student struct {
	ID          int64   `json:"id"`
	FIO         string  `json:"fio"`
	DateOfBirth string  `json:"date_of_birth"`
	Phone       *string `json:"phone"`
}

func (s Student) EntityID() int64  { return s.ID }
func (s Student) EntityKind() Kind { return KindStudent }

type Course struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Teacher     *string `json:"teacher"`
}

func (c Course) EntityID() int64  { return c.ID }
func (c Course) EntityKind() Kind { return KindCourse }

// Record: оценка студента по курсу.
// StudentFIO и CourseName сервер подставляет только для отображения, обратно их не шлём.
type Record struct {
	ID         int64   `json:"id"`
	StudentID  int64   `json:"id_student"`
	StudentFIO *string `json:"student_fio"`
	CourseID   int64   `json:"course_id"`
	CourseName *string `json:"course_name"`
	Date       string  `json:"date"`
	Grade      *string `json:"grade"`
}

func (r Record) EntityID() int64  { return r.ID }
func (r Record) EntityKind() Kind { return KindRecord }

// Str разыменовывает nullable-строку.
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// StrPtr возвращает nil для пустой строки.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
