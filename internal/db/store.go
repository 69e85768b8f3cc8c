package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Spok95/gradebook-bot/internal/ctxutil"
	"github.com/Spok95/gradebook-bot/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrBadReference: запись ссылается на несуществующего студента или курс.
	ErrBadReference = errors.New("referenced student or course does not exist")
)

const dateLayout = "2006-01-02"

// ListFilter: параметры выборки. Нулевые значения не фильтруют.
type ListFilter struct {
	Query    string
	CourseID int64
	Teacher  string
	Sort     models.SortOrder
}

type StudentInput struct {
	FIO         string
	DateOfBirth time.Time
	Phone       *string
}

// StudentPatch: nil-поле не меняется.
// Patch: nil не меняет поле. Пустая строка в необязательном поле очищает его (NULL).
type StudentPatch struct {
	FIO         *string
	DateOfBirth *time.Time
	Phone       *string
}

type CourseInput struct {
	Name        string
	Description *string
	Teacher     *string
}

type CoursePatch struct {
	Name        *string
	Description *string
	Teacher     *string
}

type RecordInput struct {
	StudentID int64
	CourseID  int64
	Date      time.Time
	Grade     *string
}

type RecordPatch struct {
	StudentID *int64
	CourseID  *int64
	Date      *time.Time
	Grade     *string
}

// Store: хранилище студентов, курсов и записей.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) *Store { return &Store{db: database} }

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

// where собирает условия с позиционными параметрами $1..$n.
// Все "?" одного условия ссылаются на один и тот же параметр.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(w.args))))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func orderBy(sort models.SortOrder, col, fallback string) string {
	switch sort {
	case models.SortAsc:
		return " ORDER BY " + col + " ASC, " + fallback
	case models.SortDesc:
		return " ORDER BY " + col + " DESC, " + fallback
	default:
		return " ORDER BY " + fallback
	}
}

func like(q string) string { return "%" + q + "%" }

func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}

func dateOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func int64OrNil(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// ===== Студенты =====

const studentCols = `id, fio, date_of_birth, phone`

func scanStudent(row interface{ Scan(...any) error }) (models.Student, error) {
	var (
		st    models.Student
		dob   time.Time
		phone sql.NullString
	)
	if err := row.Scan(&st.ID, &st.FIO, &dob, &phone); err != nil {
		return models.Student{}, err
	}
	st.DateOfBirth = dob.Format(dateLayout)
	if phone.Valid {
		st.Phone = &phone.String
	}
	return st, nil
}

func (s *Store) ListStudents(ctx context.Context, f ListFilter) ([]models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	w := &where{}
	if q := strings.TrimSpace(f.Query); q != "" {
		w.add("fio ILIKE ?", like(q))
	}
	query := `SELECT ` + studentCols + ` FROM students` + w.String() + orderBy(f.Sort, "date_of_birth", "id")

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) CreateStudent(ctx context.Context, in StudentInput) (models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO students (fio, date_of_birth, phone)
		VALUES ($1, $2, $3)
		RETURNING `+studentCols, in.FIO, in.DateOfBirth, in.Phone)
	st, err := scanStudent(row)
	if err != nil {
		return models.Student{}, fmt.Errorf("create student: %w", err)
	}
	return st, nil
}

func (s *Store) UpdateStudent(ctx context.Context, id int64, p StudentPatch) (models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		UPDATE students SET
			fio = COALESCE($2, fio),
			date_of_birth = COALESCE($3, date_of_birth),
			phone = CASE WHEN $4::text IS NULL THEN phone ELSE NULLIF($4, '') END
		WHERE id = $1
		RETURNING `+studentCols, id, p.FIO, dateOrNil(p.DateOfBirth), p.Phone)
	st, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Student{}, ErrNotFound
	}
	if err != nil {
		return models.Student{}, fmt.Errorf("update student %d: %w", id, err)
	}
	return st, nil
}

// DeleteStudent удаляет студента вместе с его записями.
func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "students", id)
}

// ===== Курсы =====

const courseCols = `id, name, description, teacher`

func scanCourse(row interface{ Scan(...any) error }) (models.Course, error) {
	var (
		c             models.Course
		desc, teacher sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &desc, &teacher); err != nil {
		return models.Course{}, err
	}
	if desc.Valid {
		c.Description = &desc.String
	}
	if teacher.Valid {
		c.Teacher = &teacher.String
	}
	return c, nil
}

func (s *Store) ListCourses(ctx context.Context, f ListFilter) ([]models.Course, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	w := &where{}
	if q := strings.TrimSpace(f.Query); q != "" {
		w.add("name ILIKE ?", like(q))
	}
	if t := strings.TrimSpace(f.Teacher); t != "" {
		w.add("teacher = ?", t)
	}
	query := `SELECT ` + courseCols + ` FROM courses` + w.String() + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCourse(ctx context.Context, in CourseInput) (models.Course, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO courses (name, description, teacher)
		VALUES ($1, $2, $3)
		RETURNING `+courseCols, in.Name, in.Description, in.Teacher)
	c, err := scanCourse(row)
	if err != nil {
		return models.Course{}, fmt.Errorf("create course: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateCourse(ctx context.Context, id int64, p CoursePatch) (models.Course, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		UPDATE courses SET
			name = COALESCE($2, name),
			description = CASE WHEN $3::text IS NULL THEN description ELSE NULLIF($3, '') END,
			teacher = CASE WHEN $4::text IS NULL THEN teacher ELSE NULLIF($4, '') END
		WHERE id = $1
		RETURNING `+courseCols, id, p.Name, p.Description, p.Teacher)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Course{}, ErrNotFound
	}
	if err != nil {
		return models.Course{}, fmt.Errorf("update course %d: %w", id, err)
	}
	return c, nil
}

// DeleteCourse удаляет курс вместе с записями по нему.
func (s *Store) DeleteCourse(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "courses", id)
}

// ===== Записи =====

const recordSelect = `
	SELECT r.id, r.id_student, s.fio, r.course_id, c.name, r.date, r.grade
	FROM records r
	JOIN students s ON s.id = r.id_student
	JOIN courses c ON c.id = r.course_id`

func scanRecord(row interface{ Scan(...any) error }) (models.Record, error) {
	var (
		r         models.Record
		fio, name string
		date      time.Time
		grade     sql.NullString
	)
	if err := row.Scan(&r.ID, &r.StudentID, &fio, &r.CourseID, &name, &date, &grade); err != nil {
		return models.Record{}, err
	}
	r.StudentFIO = &fio
	r.CourseName = &name
	r.Date = date.Format(dateLayout)
	if grade.Valid {
		r.Grade = &grade.String
	}
	return r, nil
}

func (s *Store) ListRecords(ctx context.Context, f ListFilter) ([]models.Record, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	w := &where{}
	if q := strings.TrimSpace(f.Query); q != "" {
		w.add("(s.fio ILIKE ? OR c.name ILIKE ?)", like(q))
	}
	if f.CourseID > 0 {
		w.add("r.course_id = ?", f.CourseID)
	}
	query := recordSelect + w.String() + orderBy(f.Sort, "r.date", "r.id")

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) getRecord(ctx context.Context, id int64) (models.Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, recordSelect+` WHERE r.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrNotFound
	}
	return r, err
}

func (s *Store) CreateRecord(ctx context.Context, in RecordInput) (models.Record, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO records (id_student, course_id, date, grade)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, in.StudentID, in.CourseID, in.Date, in.Grade).Scan(&id)
	if isFKViolation(err) {
		return models.Record{}, ErrBadReference
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("create record: %w", err)
	}
	return s.getRecord(ctx, id)
}

func (s *Store) UpdateRecord(ctx context.Context, id int64, p RecordPatch) (models.Record, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		UPDATE records SET
			id_student = COALESCE($2, id_student),
			course_id = COALESCE($3, course_id),
			date = COALESCE($4, date),
			grade = CASE WHEN $5::text IS NULL THEN grade ELSE NULLIF($5, '') END
		WHERE id = $1`, id, int64OrNil(p.StudentID), int64OrNil(p.CourseID), dateOrNil(p.Date), p.Grade)
	if isFKViolation(err) {
		return models.Record{}, ErrBadReference
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("update record %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Record{}, ErrNotFound
	}
	return s.getRecord(ctx, id)
}

func (s *Store) DeleteRecord(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "records", id)
}

// table приходит только из кода, не от пользователя.
func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
