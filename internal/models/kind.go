package models

import "fmt"

// Kind: вид сущности, с которой работает консоль.
type Kind int

const (
	KindStudent Kind = iota + 1
	KindCourse
	KindRecord
)

// Kinds в порядке показа в меню.
var Kinds = []Kind{KindStudent, KindCourse, KindRecord}

// Collection: имя REST-коллекции (/api/<collection>).
func (k Kind) Collection() string {
	switch k {
	case KindStudent:
		return "students"
	case KindCourse:
		return "courses"
	case KindRecord:
		return "records"
	default:
		return ""
	}
}

// Title: заголовок для меню и сообщений.
func (k Kind) Title() string {
	switch k {
	case KindStudent:
		return "Студенты"
	case KindCourse:
		return "Курсы"
	case KindRecord:
		return "Записи"
	default:
		return "?"
	}
}

func (k Kind) String() string {
	if c := k.Collection(); c != "" {
		return c
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind принимает имя коллекции. Всё, что не students/courses, считается записями.
func ParseKind(s string) Kind {
	switch s {
	case "students":
		return KindStudent
	case "courses":
		return KindCourse
	default:
		return KindRecord
	}
}

// Valid сообщает, что значение является одним из трёх видов.
func (k Kind) Valid() bool {
	return k >= KindStudent && k <= KindRecord
}
