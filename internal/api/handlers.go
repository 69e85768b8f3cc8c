package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/gradebook-bot/internal/db"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/observability"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

var deleted = gin.H{"status": "deleted"}

type studentBody struct {
	FIO         *string `json:"fio"`
	DateOfBirth *string `json:"date_of_birth"`
	Phone       *string `json:"phone"`
}

type courseBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Teacher     *string `json:"teacher"`
}

type recordBody struct {
	StudentID *int64  `json:"id_student"`
	CourseID  *int64  `json:"course_id"`
	Date      *string `json:"date"`
	Grade     *string `json:"grade"`
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// fail переводит ошибку хранилища в HTTP-ответ.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "Not found"})
	case errors.Is(err, db.ErrBadReference):
		badRequest(c, "Unknown student or course")
	default:
		_ = c.Error(err)
		observability.CaptureErr(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal error"})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Not found"})
		return 0, false
	}
	return id, true
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Invalid JSON body")
		return false
	}
	return true
}

func listFilter(c *gin.Context) db.ListFilter {
	f := db.ListFilter{
		Query:   strings.TrimSpace(c.Query("q")),
		Teacher: strings.TrimSpace(c.Query("teacher")),
		Sort:    models.ParseSortOrder(c.Query("sort")),
	}
	// нечисловой course_id молча игнорируется
	if id, err := strconv.ParseInt(strings.TrimSpace(c.Query("course_id")), 10, 64); err == nil {
		f.CourseID = id
	}
	return f
}

// parseDate: nil или пустая строка означают, что поле не задано.
func parseDate(p *string) (*time.Time, error) {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*p))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func blankToNil(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// clearable: необязательное поле при обновлении. nil: не менять, "" очищает поле (NULL).
func clearable(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// ===== students =====

func (s *Server) listStudents(c *gin.Context) {
	out, err := s.store.ListStudents(c.Request.Context(), listFilter(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createStudent(c *gin.Context) {
	var b studentBody
	if !bind(c, &b) {
		return
	}
	dob, err := parseDate(b.DateOfBirth)
	if err != nil || dob == nil {
		badRequest(c, "Invalid date_of_birth")
		return
	}
	fio := blankToNil(b.FIO)
	if fio == nil {
		badRequest(c, "fio is required")
		return
	}
	st, err := s.store.CreateStudent(c.Request.Context(), db.StudentInput{
		FIO: *fio, DateOfBirth: *dob, Phone: blankToNil(b.Phone),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (s *Server) updateStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var b studentBody
	if !bind(c, &b) {
		return
	}
	dob, err := parseDate(b.DateOfBirth)
	if err != nil {
		badRequest(c, "Invalid date_of_birth")
		return
	}
	st, err := s.store.UpdateStudent(c.Request.Context(), id, db.StudentPatch{
		FIO: blankToNil(b.FIO), DateOfBirth: dob, Phone: clearable(b.Phone),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) deleteStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteStudent(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, deleted)
}

// ===== courses =====

func (s *Server) listCourses(c *gin.Context) {
	out, err := s.store.ListCourses(c.Request.Context(), listFilter(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createCourse(c *gin.Context) {
	var b courseBody
	if !bind(c, &b) {
		return
	}
	name := blankToNil(b.Name)
	if name == nil {
		badRequest(c, "name is required")
		return
	}
	out, err := s.store.CreateCourse(c.Request.Context(), db.CourseInput{
		Name: *name, Description: blankToNil(b.Description), Teacher: blankToNil(b.Teacher),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) updateCourse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var b courseBody
	if !bind(c, &b) {
		return
	}
	out, err := s.store.UpdateCourse(c.Request.Context(), id, db.CoursePatch{
		Name: blankToNil(b.Name), Description: clearable(b.Description), Teacher: clearable(b.Teacher),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) deleteCourse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteCourse(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, deleted)
}

// ===== records =====

func (s *Server) listRecords(c *gin.Context) {
	out, err := s.store.ListRecords(c.Request.Context(), listFilter(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createRecord(c *gin.Context) {
	var b recordBody
	if !bind(c, &b) {
		return
	}
	date, err := parseDate(b.Date)
	if err != nil || date == nil {
		badRequest(c, "Invalid date")
		return
	}
	if b.StudentID == nil || b.CourseID == nil {
		badRequest(c, "id_student and course_id are required")
		return
	}
	out, err := s.store.CreateRecord(c.Request.Context(), db.RecordInput{
		StudentID: *b.StudentID, CourseID: *b.CourseID, Date: *date, Grade: blankToNil(b.Grade),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) updateRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var b recordBody
	if !bind(c, &b) {
		return
	}
	date, err := parseDate(b.Date)
	if err != nil {
		badRequest(c, "Invalid date")
		return
	}
	out, err := s.store.UpdateRecord(c.Request.Context(), id, db.RecordPatch{
		StudentID: b.StudentID, CourseID: b.CourseID, Date: date, Grade: clearable(b.Grade),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) deleteRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteRecord(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, deleted)
}
