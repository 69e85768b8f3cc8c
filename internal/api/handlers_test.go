package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Spok95/gradebook-bot/internal/db"
	"github.com/Spok95/gradebook-bot/internal/models"
)

type fakeStore struct {
	filters  []db.ListFilter
	students []models.Student
	created  []any
	patches  []any
	deleted  []int64
	err      error
}

func (f *fakeStore) Ping(context.Context) error { return f.err }

func (f *fakeStore) ListStudents(_ context.Context, fl db.ListFilter) ([]models.Student, error) {
	f.filters = append(f.filters, fl)
	return f.students, f.err
}

func (f *fakeStore) CreateStudent(_ context.Context, in db.StudentInput) (models.Student, error) {
	f.created = append(f.created, in)
	return models.Student{ID: 7, FIO: in.FIO, DateOfBirth: in.DateOfBirth.Format(dateLayout), Phone: in.Phone}, f.err
}

func (f *fakeStore) UpdateStudent(_ context.Context, id int64, p db.StudentPatch) (models.Student, error) {
	f.patches = append(f.patches, p)
	return models.Student{ID: id}, f.err
}

func (f *fakeStore) DeleteStudent(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeStore) ListCourses(_ context.Context, fl db.ListFilter) ([]models.Course, error) {
	f.filters = append(f.filters, fl)
	return []models.Course{}, f.err
}

func (f *fakeStore) CreateCourse(_ context.Context, in db.CourseInput) (models.Course, error) {
	f.created = append(f.created, in)
	return models.Course{ID: 3, Name: in.Name}, f.err
}

func (f *fakeStore) UpdateCourse(_ context.Context, id int64, p db.CoursePatch) (models.Course, error) {
	f.patches = append(f.patches, p)
	return models.Course{ID: id}, f.err
}

func (f *fakeStore) DeleteCourse(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeStore) ListRecords(_ context.Context, fl db.ListFilter) ([]models.Record, error) {
	f.filters = append(f.filters, fl)
	return []models.Record{}, f.err
}

func (f *fakeStore) CreateRecord(_ context.Context, in db.RecordInput) (models.Record, error) {
	f.created = append(f.created, in)
	return models.Record{ID: 11, StudentID: in.StudentID, CourseID: in.CourseID}, f.err
}

func (f *fakeStore) UpdateRecord(_ context.Context, id int64, p db.RecordPatch) (models.Record, error) {
	f.patches = append(f.patches, p)
	return models.Record{ID: id}, f.err
}

func (f *fakeStore) DeleteRecord(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListFilters(t *testing.T) {
	st := &fakeStore{students: []models.Student{{ID: 1, FIO: "Иванов", DateOfBirth: "2001-05-03"}}}
	h := NewRouter(st, nil, "dev")

	rec := do(t, h, http.MethodGet, "/api/students?q=%20Iva%20&sort=desc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var got []models.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].FIO != "Иванов" {
		t.Fatalf("body = %s", rec.Body.String())
	}

	do(t, h, http.MethodGet, "/api/records?course_id=abc&sort=sideways", "")
	do(t, h, http.MethodGet, "/api/records?course_id=4", "")
	do(t, h, http.MethodGet, "/api/courses?teacher=Sidorov", "")

	want := []db.ListFilter{
		{Query: "Iva", Sort: models.SortDesc},
		{Sort: models.SortDefault},
		{CourseID: 4, Sort: models.SortDefault},
		{Teacher: "Sidorov", Sort: models.SortDefault},
	}
	if diff := cmp.Diff(want, st.filters); diff != "" {
		t.Fatalf("filters (-want +got):\n%s", diff)
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		code   int
	}{
		{"student", "/api/students", `{"fio":"Петрова","date_of_birth":"2002-11-20","phone":""}`, http.StatusCreated},
		{"student bad date", "/api/students", `{"fio":"Петрова","date_of_birth":"20.11.2002"}`, http.StatusBadRequest},
		{"student no fio", "/api/students", `{"date_of_birth":"2002-11-20"}`, http.StatusBadRequest},
		{"course", "/api/courses", `{"name":"Алгебра","teacher":"Сидоров"}`, http.StatusCreated},
		{"record", "/api/records", `{"id_student":1,"course_id":2,"date":"2024-01-09","grade":"5"}`, http.StatusCreated},
		{"record no date", "/api/records", `{"id_student":1,"course_id":2}`, http.StatusBadRequest},
		{"broken json", "/api/records", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, NewRouter(&fakeStore{}, nil, "dev"), http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.code, rec.Body.String())
			}
		})
	}
}

func TestCreateStudentStoresNullPhone(t *testing.T) {
	st := &fakeStore{}
	rec := do(t, NewRouter(st, nil, "dev"), http.MethodPost, "/api/students",
		`{"fio":" Петрова ","date_of_birth":"2002-11-20","phone":""}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d", rec.Code)
	}
	in := st.created[0].(db.StudentInput)
	if in.FIO != "Петрова" || in.Phone != nil || in.DateOfBirth.Format(dateLayout) != "2002-11-20" {
		t.Fatalf("input = %+v", in)
	}
}

func TestUpdatePartial(t *testing.T) {
	st := &fakeStore{}
	rec := do(t, NewRouter(st, nil, "dev"), http.MethodPut, "/api/records/10", `{"grade":"4"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	p := st.patches[0].(db.RecordPatch)
	if p.StudentID != nil || p.CourseID != nil || p.Date != nil || models.Str(p.Grade) != "4" {
		t.Fatalf("patch = %+v", p)
	}
}

func TestUpdateBlankClearsOptionalFields(t *testing.T) {
	st := &fakeStore{}
	r := NewRouter(st, nil, "dev")

	if rec := do(t, r, http.MethodPut, "/api/courses/3", `{"description":" Механика ","teacher":"  "}`); rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	cp := st.patches[0].(db.CoursePatch)
	if cp.Name != nil || models.Str(cp.Description) != "Механика" || cp.Teacher == nil || *cp.Teacher != "" {
		t.Fatalf("course patch = %+v", cp)
	}

	do(t, r, http.MethodPut, "/api/students/2", `{"fio":"Петрова","phone":""}`)
	do(t, r, http.MethodPut, "/api/students/2", `{"fio":"Петрова"}`)
	blank := st.patches[1].(db.StudentPatch)
	if blank.Phone == nil || *blank.Phone != "" {
		t.Fatalf("blank phone = %+v, want pointer to empty string", blank.Phone)
	}
	if absent := st.patches[2].(db.StudentPatch); absent.Phone != nil {
		t.Fatalf("absent phone = %q, want nil", *absent.Phone)
	}

	do(t, r, http.MethodPut, "/api/records/10", `{"grade":""}`)
	if rp := st.patches[3].(db.RecordPatch); rp.Grade == nil || *rp.Grade != "" {
		t.Fatalf("blank grade = %+v", rp.Grade)
	}
}

func TestErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		method string
		target string
		body   string
		code   int
	}{
		{"update missing", db.ErrNotFound, http.MethodPut, "/api/students/5", `{"fio":"x"}`, http.StatusNotFound},
		{"delete missing", db.ErrNotFound, http.MethodDelete, "/api/courses/5", "", http.StatusNotFound},
		{"bad reference", db.ErrBadReference, http.MethodPost, "/api/records", `{"id_student":1,"course_id":2,"date":"2024-01-09"}`, http.StatusBadRequest},
		{"storage down", errors.New("conn refused"), http.MethodGet, "/api/students", "", http.StatusInternalServerError},
		{"bad id", nil, http.MethodDelete, "/api/records/abc", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, NewRouter(&fakeStore{err: tt.err}, nil, "dev"), tt.method, tt.target, tt.body)
			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d", rec.Code, tt.code)
			}
		})
	}
}

func TestDeleteAnswersStatus(t *testing.T) {
	st := &fakeStore{}
	rec := do(t, NewRouter(st, nil, "dev"), http.MethodDelete, "/api/students/2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"status":"deleted"}` {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if diff := cmp.Diff([]int64{2}, st.deleted); diff != "" {
		t.Fatalf("deleted (-want +got):\n%s", diff)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := NewRouter(&fakeStore{}, nil, "dev")
	req := httptest.NewRequest(http.MethodOptions, "/api/students", nil)
	req.Header.Set("Origin", "http://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("no CORS headers: %v", rec.Header())
	}
}
