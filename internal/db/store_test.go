//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Spok95/gradebook-bot/internal/db"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/testutil/testdb"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func startStore(t *testing.T) (*db.Store, func()) {
	t.Helper()
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return db.NewStore(h.DB), h.Close
}

func TestStore_StudentsAndCourses(t *testing.T) {
	s, done := startStore(t)
	defer done()
	ctx := context.Background()

	iv, err := s.CreateStudent(ctx, db.StudentInput{FIO: "Иванов Иван", DateOfBirth: day("2001-05-03"), Phone: ptr("123")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateStudent(ctx, db.StudentInput{FIO: "Петрова Анна", DateOfBirth: day("2002-11-20")}); err != nil {
		t.Fatal(err)
	}
	if iv.DateOfBirth != "2001-05-03" || models.Str(iv.Phone) != "123" {
		t.Fatalf("created = %+v", iv)
	}

	got, err := s.ListStudents(ctx, db.ListFilter{Query: "иван"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != iv.ID {
		t.Fatalf("ilike search = %+v", got)
	}

	desc, err := s.ListStudents(ctx, db.ListFilter{Sort: models.SortDesc})
	if err != nil {
		t.Fatal(err)
	}
	if len(desc) != 2 || desc[0].FIO != "Петрова Анна" {
		t.Fatalf("desc order = %+v", desc)
	}

	upd, err := s.UpdateStudent(ctx, iv.ID, db.StudentPatch{Phone: ptr("999")})
	if err != nil {
		t.Fatal(err)
	}
	if upd.FIO != "Иванов Иван" || models.Str(upd.Phone) != "999" {
		t.Fatalf("patch touched other fields: %+v", upd)
	}
	cleared, err := s.UpdateStudent(ctx, iv.ID, db.StudentPatch{Phone: ptr("")})
	if err != nil {
		t.Fatal(err)
	}
	if cleared.Phone != nil || cleared.FIO != "Иванов Иван" {
		t.Fatalf("blank phone must clear to NULL: %+v", cleared)
	}
	if _, err := s.UpdateStudent(ctx, 9999, db.StudentPatch{}); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}

	for _, in := range []db.CourseInput{
		{Name: "Алгебра", Teacher: ptr("Сидоров")},
		{Name: "Физика", Teacher: ptr("Сидоров")},
		{Name: "История"},
	} {
		if _, err := s.CreateCourse(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	bySid, err := s.ListCourses(ctx, db.ListFilter{Teacher: "Сидоров"})
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, c := range bySid {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"Алгебра", "Физика"}, names); diff != "" {
		t.Fatalf("teacher filter (-want +got):\n%s", diff)
	}

	c, err := s.UpdateCourse(ctx, bySid[1].ID, db.CoursePatch{Description: ptr("Механика"), Teacher: ptr("")})
	if err != nil {
		t.Fatal(err)
	}
	if c.Teacher != nil || models.Str(c.Description) != "Механика" || c.Name != "Физика" {
		t.Fatalf("course patch = %+v", c)
	}
	c, err = s.UpdateCourse(ctx, c.ID, db.CoursePatch{Name: ptr("Физика 2")})
	if err != nil {
		t.Fatal(err)
	}
	if models.Str(c.Description) != "Механика" || c.Teacher != nil {
		t.Fatalf("absent fields changed: %+v", c)
	}
}

func TestStore_RecordsJoinFilterCascade(t *testing.T) {
	s, done := startStore(t)
	defer done()
	ctx := context.Background()

	st, _ := s.CreateStudent(ctx, db.StudentInput{FIO: "Иванов Иван", DateOfBirth: day("2001-05-03")})
	alg, _ := s.CreateCourse(ctx, db.CourseInput{Name: "Алгебра"})
	phy, _ := s.CreateCourse(ctx, db.CourseInput{Name: "Физика"})

	r1, err := s.CreateRecord(ctx, db.RecordInput{StudentID: st.ID, CourseID: alg.ID, Date: day("2024-01-09"), Grade: ptr("5")})
	if err != nil {
		t.Fatal(err)
	}
	if models.Str(r1.StudentFIO) != "Иванов Иван" || models.Str(r1.CourseName) != "Алгебра" {
		t.Fatalf("joined names missing: %+v", r1)
	}
	if _, err := s.CreateRecord(ctx, db.RecordInput{StudentID: st.ID, CourseID: phy.ID, Date: day("2024-02-01")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateRecord(ctx, db.RecordInput{StudentID: 9999, CourseID: phy.ID, Date: day("2024-02-01")}); !errors.Is(err, db.ErrBadReference) {
		t.Fatalf("bad reference: %v", err)
	}

	byCourse, _ := s.ListRecords(ctx, db.ListFilter{CourseID: phy.ID})
	if len(byCourse) != 1 || byCourse[0].Grade != nil {
		t.Fatalf("course filter = %+v", byCourse)
	}
	byName, _ := s.ListRecords(ctx, db.ListFilter{Query: "алг"})
	if len(byName) != 1 || byName[0].ID != r1.ID {
		t.Fatalf("search by course name = %+v", byName)
	}
	desc, _ := s.ListRecords(ctx, db.ListFilter{Sort: models.SortDesc})
	if len(desc) != 2 || desc[0].Date != "2024-02-01" {
		t.Fatalf("desc = %+v", desc)
	}

	moved, err := s.UpdateRecord(ctx, r1.ID, db.RecordPatch{CourseID: &phy.ID})
	if err != nil {
		t.Fatal(err)
	}
	if models.Str(moved.CourseName) != "Физика" || models.Str(moved.Grade) != "5" {
		t.Fatalf("moved = %+v", moved)
	}
	ungraded, err := s.UpdateRecord(ctx, r1.ID, db.RecordPatch{Grade: ptr("")})
	if err != nil {
		t.Fatal(err)
	}
	if ungraded.Grade != nil {
		t.Fatalf("blank grade must clear to NULL: %+v", ungraded)
	}

	if err := s.DeleteCourse(ctx, phy.ID); err != nil {
		t.Fatal(err)
	}
	left, _ := s.ListRecords(ctx, db.ListFilter{})
	if len(left) != 0 {
		t.Fatalf("cascade left %d records", len(left))
	}
	if err := s.DeleteCourse(ctx, phy.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
