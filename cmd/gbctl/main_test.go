package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"github.com/Spok95/gradebook-bot/internal/gateway"
	"github.com/Spok95/gradebook-bot/internal/models"
)

type fakeClient struct {
	filters []gateway.Filter
	deleted []string
}

func (f *fakeClient) ListStudents(_ context.Context, fl gateway.Filter) ([]models.Student, error) {
	f.filters = append(f.filters, fl)
	return []models.Student{{ID: 1, FIO: "Иванов И.И.", DateOfBirth: "2001-05-03"}}, nil
}

func (f *fakeClient) ListCourses(_ context.Context, fl gateway.Filter) ([]models.Course, error) {
	f.filters = append(f.filters, fl)
	return nil, nil
}

func (f *fakeClient) ListRecords(_ context.Context, fl gateway.Filter) ([]models.Record, error) {
	f.filters = append(f.filters, fl)
	name, fio, grade := "Алгебра", "Иванов И.И.", "5"
	return []models.Record{{ID: 10, StudentID: 1, StudentFIO: &fio, CourseID: 2, CourseName: &name, Date: "2024-01-09", Grade: &grade}}, nil
}

func (f *fakeClient) Delete(_ context.Context, kind models.Kind, id int64) error {
	f.deleted = append(f.deleted, kind.Collection()+"/"+strconv.FormatInt(id, 10))
	return nil
}

func init() { color.NoColor = true }

func TestListStudents(t *testing.T) {
	c := &fakeClient{}
	var out bytes.Buffer
	if err := run(context.Background(), c, []string{"list", "students", "-q", "Ива", "-sort", "desc"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Иванов И.И.") || !strings.Contains(out.String(), "03.05.2001") {
		t.Fatalf("output:\n%s", out.String())
	}
	want := []gateway.Filter{{Query: "Ива", Sort: models.SortDesc}}
	if diff := cmp.Diff(want, c.filters); diff != "" {
		t.Fatalf("filters (-want +got):\n%s", diff)
	}
}

func TestListEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), &fakeClient{}, []string{"list", "courses"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Пусто") {
		t.Fatalf("output:\n%s", out.String())
	}
}

func TestDelete(t *testing.T) {
	c := &fakeClient{}
	var out bytes.Buffer
	if err := run(context.Background(), c, []string{"delete", "records", "7"}, &out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"records/7"}, c.deleted); diff != "" {
		t.Fatalf("deleted (-want +got):\n%s", diff)
	}
	if err := run(context.Background(), c, []string{"delete", "records", "x"}, &out); err == nil {
		t.Fatal("want error for bad id")
	}
}

func TestExportWritesFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.xlsx")
	var out bytes.Buffer
	if err := run(context.Background(), &fakeClient{}, []string{"export", "-course", "2", "-o", name}, &out); err != nil {
		t.Fatal(err)
	}
	st, err := os.Stat(name)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written: %v", err)
	}
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{nil, {"frobnicate"}, {"list"}, {"list", "teachers"}} {
		if err := run(context.Background(), &fakeClient{}, args, &bytes.Buffer{}); err == nil {
			t.Fatalf("args %v: want usage error", args)
		}
	}
}
