package models

// Payload: тело POST/PUT. Всегда полный набор полей сущности.
type Payload interface {
	PayloadKind() Kind
}

type StudentPayload struct {
	FIO         string `json:"fio"`
	DateOfBirth string `json:"date_of_birth"`
	Phone       string `json:"phone"`
}

func (StudentPayload) PayloadKind() Kind { return KindStudent }

type CoursePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Teacher     string `json:"teacher"`
}

func (CoursePayload) PayloadKind() Kind { return KindCourse }

type RecordPayload struct {
	StudentID int64  `json:"id_student"`
	CourseID  int64  `json:"course_id"`
	Date      string `json:"date"`
	Grade     string `json:"grade"`
}

func (RecordPayload) PayloadKind() Kind { return KindRecord }
