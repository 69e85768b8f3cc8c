package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Spok95/gradebook-bot/internal/models"
)

type seen struct {
	method string
	path   string
	query  string
	body   string
}

func newServer(t *testing.T, status int, reply string, calls *[]seen) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		*calls = append(*calls, seen{r.Method, r.URL.Path, r.URL.RawQuery, string(raw)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 2*time.Second, nil)
}

func TestListStudents_DecodesAndForwardsFilter(t *testing.T) {
	var calls []seen
	c := newServer(t, http.StatusOK,
		`[{"id":1,"fio":"Ivanov I.I.","date_of_birth":"2001-05-03","phone":"123"}]`, &calls)

	got, err := c.ListStudents(context.Background(), Filter{Query: " Iva ", Sort: models.SortDesc})
	if err != nil {
		t.Fatal(err)
	}
	phone := "123"
	want := []models.Student{{ID: 1, FIO: "Ivanov I.I.", DateOfBirth: "2001-05-03", Phone: &phone}}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("students mismatch (-want +got):\n%s", d)
	}
	if len(calls) != 1 || calls[0].path != "/api/students" || calls[0].query != "q=Iva&sort=desc" {
		t.Fatalf("unexpected request: %+v", calls)
	}
}

func TestFilterValues_OmitsEmpty(t *testing.T) {
	tests := []struct {
		name string
		f    Filter
		want string
	}{
		{"empty", Filter{}, ""},
		{"default_sort_omitted", Filter{Sort: models.SortDefault}, ""},
		{"course", Filter{CourseID: 2, Sort: models.SortAsc}, "course_id=2&sort=asc"},
		{"teacher", Filter{Teacher: "Петров", Query: "мат"}, "q=%D0%BC%D0%B0%D1%82&teacher=%D0%9F%D0%B5%D1%82%D1%80%D0%BE%D0%B2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Values().Encode(); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCreateRecord_SendsOnlyWritableFields(t *testing.T) {
	var calls []seen
	c := newServer(t, http.StatusCreated, `{"id":7}`, &calls)

	p := models.RecordPayload{StudentID: 1, CourseID: 2, Date: "2024-01-10", Grade: "5"}
	if err := c.Create(context.Background(), models.KindRecord, p); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 || calls[0].method != http.MethodPost || calls[0].path != "/api/records" {
		t.Fatalf("unexpected request: %+v", calls)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(calls[0].body), &body); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"id_student": float64(1), "course_id": float64(2), "date": "2024-01-10", "grade": "5"}
	if d := cmp.Diff(want, body); d != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", d)
	}
}

func TestUpdateAndDelete_Paths(t *testing.T) {
	var calls []seen
	c := newServer(t, http.StatusOK, `{}`, &calls)
	ctx := context.Background()

	if err := c.Update(ctx, models.KindCourse, 3, models.CoursePayload{Name: "Алгебра"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, models.KindStudent, 9); err != nil {
		t.Fatal(err)
	}
	if calls[0].method != http.MethodPut || calls[0].path != "/api/courses/3" {
		t.Fatalf("update went to %s %s", calls[0].method, calls[0].path)
	}
	if calls[1].method != http.MethodDelete || calls[1].path != "/api/students/9" || calls[1].body != "" {
		t.Fatalf("delete went to %s %s body=%q", calls[1].method, calls[1].path, calls[1].body)
	}
}

func TestNon2xx_IsRequestError(t *testing.T) {
	var calls []seen
	c := newServer(t, http.StatusNotFound, `{"error":"Not found"}`, &calls)

	err := c.Delete(context.Background(), models.KindRecord, 404)
	if !errors.Is(err, ErrRequest) {
		t.Fatalf("want ErrRequest, got %v", err)
	}
	var ge *Error
	if !errors.As(err, &ge) || ge.Status != http.StatusNotFound {
		t.Fatalf("want *Error with 404, got %#v", err)
	}
	if IsServerSide(err) {
		t.Fatal("404 must not be reported as a server-side failure")
	}
}

func TestTransportError_IsRequestError(t *testing.T) {
	c := New("http://127.0.0.1:1", 200*time.Millisecond, nil)
	_, err := c.ListCourses(context.Background(), Filter{})
	if !errors.Is(err, ErrRequest) {
		t.Fatalf("want ErrRequest, got %v", err)
	}
	if !IsServerSide(err) {
		t.Fatal("transport failure should count as server-side")
	}
}

func TestPayloadKindMismatch(t *testing.T) {
	var calls []seen
	c := newServer(t, http.StatusOK, `{}`, &calls)
	if err := c.Create(context.Background(), models.KindStudent, models.CoursePayload{}); err == nil {
		t.Fatal("expected error for mismatched payload")
	}
	if len(calls) != 0 {
		t.Fatalf("no request expected, got %d", len(calls))
	}
}

func TestList_DispatchesByKind(t *testing.T) {
	var calls []seen
	c := newServer(t, http.StatusOK, `[{"id":2,"name":"Алгебра","teacher":"Сидоров"}]`, &calls)

	got, err := c.List(context.Background(), models.KindCourse, Filter{Teacher: "Сидоров"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].EntityID() != 2 {
		t.Fatalf("entities = %+v", got)
	}
	if _, ok := got[0].(models.Course); !ok {
		t.Fatalf("entity type = %T, want models.Course", got[0])
	}
	if len(calls) != 1 || calls[0].path != "/api/courses" {
		t.Fatalf("unexpected request: %+v", calls)
	}
}
