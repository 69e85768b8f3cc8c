package handlers

import (
	"github.com/Spok95/gradebook-bot/internal/console"
	"github.com/Spok95/gradebook-bot/internal/view"
)

// Page: страница консоли, которая сейчас открыта в чате.
type Page string

const (
	PageRecords  Page = "records"
	PageStudents Page = "students"
	PageCourses  Page = "courses"
	PageEditor   Page = "editor"
	PageDelete   Page = "delete"
)

// Раскрытые списки выбора, кроме console.OptionsTarget.
const expandGrade = "grade"

// Screen: последнее, что консоль нарисовала в чате, и номер сообщения со страницей.
// Реализует console.Surface: каждый вызов заменяет свой элемент целиком.
type Screen struct {
	Page      Page   `json:"page,omitempty"`
	MessageID int    `json:"message_id,omitempty"`
	Offset    int    `json:"offset,omitempty"`
	Expanded  string `json:"expanded,omitempty"`
	Awaiting  string `json:"awaiting,omitempty"`

	Tables  map[console.Target]view.Table          `json:"tables,omitempty"`
	Sorts   map[console.Target][]view.Segment      `json:"sorts,omitempty"`
	Options map[console.OptionsTarget][]view.Option `json:"options,omitempty"`
	Form    *console.Form                          `json:"form,omitempty"`
	Confirm *console.DeleteConfirm                 `json:"confirm,omitempty"`

	notes []string
}

var _ console.Surface = (*Screen)(nil)

func NewScreen() *Screen {
	s := &Screen{}
	s.normalize()
	return s
}

func (s *Screen) normalize() {
	if s.Tables == nil {
		s.Tables = map[console.Target]view.Table{}
	}
	if s.Sorts == nil {
		s.Sorts = map[console.Target][]view.Segment{}
	}
	if s.Options == nil {
		s.Options = map[console.OptionsTarget][]view.Option{}
	}
}

func (s *Screen) ShowTable(target console.Target, t view.Table) { s.Tables[target] = t }

func (s *Screen) ShowSort(target console.Target, segments []view.Segment) {
	s.Sorts[target] = segments
}

func (s *Screen) ShowOptions(target console.OptionsTarget, opts []view.Option) {
	s.Options[target] = opts
}

func (s *Screen) ShowForm(f console.Form) {
	cp := f
	cp.Values = make(map[string]string, len(f.Values))
	for k, v := range f.Values {
		cp.Values[k] = v
	}
	s.Form = &cp
}

func (s *Screen) ShowDeleteConfirm(c *console.DeleteConfirm) {
	if c == nil {
		s.Confirm = nil
		return
	}
	cp := *c
	s.Confirm = &cp
}

func (s *Screen) Notify(text string) { s.notes = append(s.notes, text) }

// TakeNotes отдаёт накопленные уведомления и очищает их.
func (s *Screen) TakeNotes() []string {
	n := s.notes
	s.notes = nil
	return n
}

// Open переключает страницу: сбрасывает прокрутку, раскрытые списки и ожидание ввода.
func (s *Screen) Open(p Page) {
	s.Page = p
	s.Offset = 0
	s.Expanded = ""
	s.Awaiting = ""
}

// Session: всё, что хранится между апдейтами одного чата.
type Session struct {
	Console *console.State `json:"console"`
	Screen  *Screen        `json:"screen"`
}

func NewSession() Session {
	return Session{Console: console.NewState(), Screen: NewScreen()}
}

func (s *Session) normalize() {
	if s.Console == nil {
		s.Console = console.NewState()
	}
	if s.Screen == nil {
		s.Screen = NewScreen()
	}
	s.Screen.normalize()
}
