package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/db"
	"github.com/Spok95/gradebook-bot/internal/metrics"
	"github.com/Spok95/gradebook-bot/internal/models"
)

// Store: то, что API берёт у хранилища. *db.Store подходит.
type Store interface {
	Ping(ctx context.Context) error

	ListStudents(ctx context.Context, f db.ListFilter) ([]models.Student, error)
	CreateStudent(ctx context.Context, in db.StudentInput) (models.Student, error)
	UpdateStudent(ctx context.Context, id int64, p db.StudentPatch) (models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error

	ListCourses(ctx context.Context, f db.ListFilter) ([]models.Course, error)
	CreateCourse(ctx context.Context, in db.CourseInput) (models.Course, error)
	UpdateCourse(ctx context.Context, id int64, p db.CoursePatch) (models.Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	ListRecords(ctx context.Context, f db.ListFilter) ([]models.Record, error)
	CreateRecord(ctx context.Context, in db.RecordInput) (models.Record, error)
	UpdateRecord(ctx context.Context, id int64, p db.RecordPatch) (models.Record, error)
	DeleteRecord(ctx context.Context, id int64) error
}

var _ Store = (*db.Store)(nil)

type Server struct {
	store Store
	log   *zap.Logger
}

// NewRouter собирает /api/* поверх gin. CORS открыт для всех источников.
func NewRouter(store Store, log *zap.Logger, env string) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{store: store, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/students", s.listStudents)
		api.POST("/students", s.createStudent)
		api.PUT("/students/:id", s.updateStudent)
		api.DELETE("/students/:id", s.deleteStudent)

		api.GET("/courses", s.listCourses)
		api.POST("/courses", s.createCourse)
		api.PUT("/courses/:id", s.updateCourse)
		api.DELETE("/courses/:id", s.deleteCourse)

		api.GET("/records", s.listRecords)
		api.POST("/records", s.createRecord)
		api.PUT("/records/:id", s.updateRecord)
		api.DELETE("/records/:id", s.deleteRecord)
	}

	return cors.AllowAll().Handler(r)
}

// observe пишет access-лог и gradebook_api_requests_total.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		t0 := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := c.Writer.Status()
		metrics.APIRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(code)).Inc()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", code),
			zap.Duration("took", time.Since(t0)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if code >= http.StatusInternalServerError {
			s.log.Error("api request", fields...)
			return
		}
		s.log.Debug("api request", fields...)
	}
}

func (s *Server) health(c *gin.Context) {
	t0 := time.Now()
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.String(http.StatusServiceUnavailable, "db not ok: %v", err)
		return
	}
	metrics.ObserveDBPing(time.Since(t0))
	c.String(http.StatusOK, "ok")
}
