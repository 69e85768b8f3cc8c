package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/Spok95/gradebook-bot/internal/gateway"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/view"
)

var errBoom = fmt.Errorf("boom: %w", gateway.ErrRequest)

// fakeGateway: API в памяти с журналом вызовов.
type fakeGateway struct {
	mu       sync.Mutex
	students []models.Student
	courses  []models.Course
	records  []models.Record
	calls    []string
	filters  []gateway.Filter
	payloads []models.Payload
	failOn   map[string]error // "create:records" → ошибка
	nextID   int64
}

func (g *fakeGateway) log(call string, f gateway.Filter) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
	g.filters = append(g.filters, f)
	return g.failOn[call]
}

func (g *fakeGateway) ListStudents(_ context.Context, f gateway.Filter) ([]models.Student, error) {
	if err := g.log("list:students", f); err != nil {
		return nil, err
	}
	return append([]models.Student(nil), g.students...), nil
}

func (g *fakeGateway) ListCourses(_ context.Context, f gateway.Filter) ([]models.Course, error) {
	if err := g.log("list:courses", f); err != nil {
		return nil, err
	}
	return append([]models.Course(nil), g.courses...), nil
}

func (g *fakeGateway) ListRecords(_ context.Context, f gateway.Filter) ([]models.Record, error) {
	if err := g.log("list:records", f); err != nil {
		return nil, err
	}
	return append([]models.Record(nil), g.records...), nil
}

func (g *fakeGateway) List(ctx context.Context, kind models.Kind, f gateway.Filter) ([]models.Entity, error) {
	switch kind {
	case models.KindStudent:
		xs, err := g.ListStudents(ctx, f)
		return entities(xs), err
	case models.KindCourse:
		xs, err := g.ListCourses(ctx, f)
		return entities(xs), err
	default:
		xs, err := g.ListRecords(ctx, f)
		return entities(xs), err
	}
}

func entities[T models.Entity](xs []T) []models.Entity {
	out := make([]models.Entity, 0, len(xs))
	for _, x := range xs {
		out = append(out, x)
	}
	return out
}

func (g *fakeGateway) Create(_ context.Context, kind models.Kind, p models.Payload) error {
	if err := g.log("create:"+kind.String(), gateway.Filter{}); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payloads = append(g.payloads, p)
	g.nextID++
	switch v := p.(type) {
	case models.StudentPayload:
		g.students = append(g.students, models.Student{ID: 100 + g.nextID, FIO: v.FIO, DateOfBirth: v.DateOfBirth, Phone: models.StrPtr(v.Phone)})
	case models.CoursePayload:
		g.courses = append(g.courses, models.Course{ID: 100 + g.nextID, Name: v.Name, Description: models.StrPtr(v.Description), Teacher: models.StrPtr(v.Teacher)})
	case models.RecordPayload:
		r := models.Record{ID: 100 + g.nextID, StudentID: v.StudentID, CourseID: v.CourseID, Date: v.Date, Grade: models.StrPtr(v.Grade)}
		for _, s := range g.students {
			if s.ID == v.StudentID {
				r.StudentFIO = models.StrPtr(s.FIO)
			}
		}
		for _, c := range g.courses {
			if c.ID == v.CourseID {
				r.CourseName = models.StrPtr(c.Name)
			}
		}
		g.records = append(g.records, r)
	}
	return nil
}

func (g *fakeGateway) Update(_ context.Context, kind models.Kind, id int64, p models.Payload) error {
	if err := g.log(fmt.Sprintf("update:%s:%d", kind, id), gateway.Filter{}); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payloads = append(g.payloads, p)
	return nil
}

func (g *fakeGateway) Delete(_ context.Context, kind models.Kind, id int64) error {
	if err := g.log(fmt.Sprintf("delete:%s:%d", kind, id), gateway.Filter{}); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	switch kind {
	case models.KindStudent:
		g.students = removeByID(g.students, id)
	case models.KindCourse:
		g.courses = removeByID(g.courses, id)
	case models.KindRecord:
		g.records = removeByID(g.records, id)
	}
	return nil
}

func removeByID[T models.Entity](xs []T, id int64) []T {
	out := xs[:0]
	for _, x := range xs {
		if x.EntityID() != id {
			out = append(out, x)
		}
	}
	return out
}

func (g *fakeGateway) count(call string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (g *fakeGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
	g.filters = nil
	g.payloads = nil
}

func (g *fakeGateway) lastFilter() gateway.Filter {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filters[len(g.filters)-1]
}

// fakeSurface запоминает последнее показанное состояние каждого элемента.
type fakeSurface struct {
	tables   map[Target]view.Table
	sorts    map[Target][]view.Segment
	options  map[OptionsTarget][]view.Option
	form     *Form
	confirm  *DeleteConfirm
	confirms int
	notes    []string
	tableOps map[Target]int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		tables:   map[Target]view.Table{},
		sorts:    map[Target][]view.Segment{},
		options:  map[OptionsTarget][]view.Option{},
		tableOps: map[Target]int{},
	}
}

func (s *fakeSurface) ShowTable(t Target, tbl view.Table) {
	s.tables[t] = tbl
	s.tableOps[t]++
}
func (s *fakeSurface) ShowSort(t Target, seg []view.Segment)          { s.sorts[t] = seg }
func (s *fakeSurface) ShowOptions(t OptionsTarget, opts []view.Option) { s.options[t] = opts }
func (s *fakeSurface) ShowForm(f Form)                                 { s.form = &f }
func (s *fakeSurface) ShowDeleteConfirm(c *DeleteConfirm) {
	s.confirms++
	if c == nil {
		s.confirm = nil
		return
	}
	cp := *c
	s.confirm = &cp
}
func (s *fakeSurface) Notify(text string) { s.notes = append(s.notes, text) }

func (s *fakeSurface) lastNote() string {
	if len(s.notes) == 0 {
		return ""
	}
	return s.notes[len(s.notes)-1]
}

func ptr(s string) *string { return &s }

func seeded() *fakeGateway {
	return &fakeGateway{
		students: []models.Student{
			{ID: 1, FIO: "Ivanov I.I.", DateOfBirth: "2001-05-03", Phone: ptr("123")},
			{ID: 2, FIO: "Petrova A.A.", DateOfBirth: "2002-11-20"},
		},
		courses: []models.Course{
			{ID: 2, Name: "Алгебра", Teacher: ptr("Сидоров")},
			{ID: 3, Name: "Физика", Description: ptr("Механика"), Teacher: ptr("Сидоров")},
			{ID: 4, Name: "История"},
		},
		records: []models.Record{
			{ID: 10, StudentID: 1, StudentFIO: ptr("Ivanov I.I."), CourseID: 2, CourseName: ptr("Алгебра"), Date: "2024-01-09", Grade: ptr("4")},
		},
		failOn: map[string]error{},
	}
}
