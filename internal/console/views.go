package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/Spok95/gradebook-bot/internal/gateway"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/view"
)

const (
	keyCourseFilter  = "opts:course_filter"
	keyTeacherFilter = "opts:teacher_filter"
)

func viewKey(kind models.Kind) string { return "view:" + kind.String() }

// ViewTarget: таблица основного списка для вида kind.
func ViewTarget(kind models.Kind) Target {
	switch kind {
	case models.KindStudent:
		return TargetStudents
	case models.KindCourse:
		return TargetCourses
	default:
		return TargetRecords
	}
}

// Filter собирает текущее состояние всех контролов страницы в один запрос.
func (st *State) Filter(kind models.Kind) gateway.Filter {
	switch kind {
	case models.KindStudent:
		return gateway.Filter{Query: st.Students.Query, Sort: st.Students.Sort}
	case models.KindCourse:
		return gateway.Filter{Query: st.Courses.Query, Teacher: st.Courses.Teacher}
	default:
		return gateway.Filter{Query: st.Records.Query, CourseID: st.Records.CourseID, Sort: st.Records.Sort}
	}
}

// Init: первичная загрузка: фильтры и все три списка.
func (c *Console) Init(ctx context.Context) {
	c.RefreshCourseFilter(ctx)
	c.RefreshTeacherFilter(ctx)
	c.OpenView(ctx, models.KindRecord)
	c.OpenView(ctx, models.KindStudent)
	c.OpenView(ctx, models.KindCourse)
}

// OpenView показывает страницу списка: контролы сортировки и сам список.
func (c *Console) OpenView(ctx context.Context, kind models.Kind) {
	c.mu.Lock()
	switch kind {
	case models.KindRecord:
		c.ui.ShowSort(TargetRecords, view.Segments(c.st.Records.Sort))
	case models.KindStudent:
		c.ui.ShowSort(TargetStudents, view.Segments(c.st.Students.Sort))
	}
	c.mu.Unlock()
	c.RefreshView(ctx, kind)
}

// RefreshView перечитывает основной список вида с текущими фильтрами.
func (c *Console) RefreshView(ctx context.Context, kind models.Kind) {
	key := viewKey(kind)
	token := c.begin(key)
	c.mu.Lock()
	f := c.st.Filter(kind)
	c.mu.Unlock()

	var tbl view.Table
	var err error
	switch kind {
	case models.KindStudent:
		var xs []models.Student
		xs, err = c.gw.ListStudents(ctx, f)
		tbl = view.StudentsTable(xs)
	case models.KindCourse:
		var xs []models.Course
		xs, err = c.gw.ListCourses(ctx, f)
		tbl = view.CoursesTable(xs)
	default:
		var xs []models.Record
		xs, err = c.gw.ListRecords(ctx, f)
		tbl = view.RecordsTable(xs)
	}
	c.finish(ctx, key, token, err, func() {
		c.ui.ShowTable(ViewTarget(kind), tbl)
	})
}

// RefreshCourseFilter перечитывает список курсов для фильтра на странице записей.
func (c *Console) RefreshCourseFilter(ctx context.Context) {
	token := c.begin(keyCourseFilter)
	courses, err := c.gw.ListCourses(ctx, gateway.Filter{})
	c.finish(ctx, keyCourseFilter, token, err, func() {
		c.st.CourseFilter = view.CourseOptions(courses, c.st.Records.CourseID, view.AllCourses)
		c.ui.ShowOptions(OptionsCourseFilter, c.st.CourseFilter)
	})
}

// RefreshTeacherFilter пересчитывает набор преподавателей по всем курсам.
func (c *Console) RefreshTeacherFilter(ctx context.Context) {
	token := c.begin(keyTeacherFilter)
	courses, err := c.gw.ListCourses(ctx, gateway.Filter{})
	c.finish(ctx, keyTeacherFilter, token, err, func() {
		c.st.TeacherFilter = view.TeacherOptions(view.Teachers(courses), c.st.Courses.Teacher)
		c.ui.ShowOptions(OptionsTeacherFilter, c.st.TeacherFilter)
	})
}

func (c *Console) SetRecordsQuery(ctx context.Context, q string) {
	c.mu.Lock()
	c.st.Records.Query = strings.TrimSpace(q)
	c.mu.Unlock()
	c.RefreshView(ctx, models.KindRecord)
}

// SetRecordsCourse принимает значение опции фильтра; "" означает все курсы.
func (c *Console) SetRecordsCourse(ctx context.Context, value string) {
	id, _ := strconv.ParseInt(value, 10, 64)
	c.mu.Lock()
	c.st.Records.CourseID = id
	if c.st.CourseFilter != nil {
		c.st.CourseFilter = markSelected(c.st.CourseFilter, value)
		c.ui.ShowOptions(OptionsCourseFilter, c.st.CourseFilter)
	}
	c.mu.Unlock()
	c.RefreshView(ctx, models.KindRecord)
}

func (c *Console) SetRecordsSort(ctx context.Context, s models.SortOrder) {
	c.mu.Lock()
	c.st.Records.Sort = s
	c.ui.ShowSort(TargetRecords, view.Segments(s))
	c.mu.Unlock()
	c.RefreshView(ctx, models.KindRecord)
}

func (c *Console) SetStudentsQuery(ctx context.Context, q string) {
	c.mu.Lock()
	c.st.Students.Query = strings.TrimSpace(q)
	c.mu.Unlock()
	c.RefreshView(ctx, models.KindStudent)
}

func (c *Console) SetStudentsSort(ctx context.Context, s models.SortOrder) {
	c.mu.Lock()
	c.st.Students.Sort = s
	c.ui.ShowSort(TargetStudents, view.Segments(s))
	c.mu.Unlock()
	c.RefreshView(ctx, models.KindStudent)
}

func (c *Console) SetCoursesQuery(ctx context.Context, q string) {
	c.mu.Lock()
	c.st.Courses.Query = strings.TrimSpace(q)
	c.mu.Unlock()
	c.RefreshView(ctx, models.KindCourse)
}

func (c *Console) SetCoursesTeacher(ctx context.Context, teacher string) {
	c.mu.Lock()
	c.st.Courses.Teacher = teacher
	if c.st.TeacherFilter != nil {
		c.st.TeacherFilter = markSelected(c.st.TeacherFilter, teacher)
		c.ui.ShowOptions(OptionsTeacherFilter, c.st.TeacherFilter)
	}
	c.mu.Unlock()
	c.RefreshView(ctx, models.KindCourse)
}

// markSelected возвращает копию списка, где выбрана ровно одна опция.
func markSelected(opts []view.Option, value string) []view.Option {
	out := make([]view.Option, len(opts))
	for i, o := range opts {
		o.Selected = o.Value == value
		out[i] = o
	}
	return out
}
