// gbctl: терминальный клиент REST API записей: списки, удаление и выгрузка в Excel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/Spok95/gradebook-bot/internal/export"
	"github.com/Spok95/gradebook-bot/internal/gateway"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/view"
)

const usage = `usage:
  gbctl list <students|courses|records> [-q text] [-sort asc|desc] [-course id] [-teacher name]
  gbctl delete <students|courses|records> <id>
  gbctl export [-q text] [-course id] [-sort asc|desc] [-o file.xlsx]`

// Client: вызовы API, которые нужны gbctl.
type Client interface {
	ListStudents(ctx context.Context, f gateway.Filter) ([]models.Student, error)
	ListCourses(ctx context.Context, f gateway.Filter) ([]models.Course, error)
	ListRecords(ctx context.Context, f gateway.Filter) ([]models.Record, error)
	Delete(ctx context.Context, kind models.Kind, id int64) error
}

var errUsage = errors.New(usage)

func main() {
	_ = godotenv.Load()
	base := os.Getenv("API_BASE_URL")
	if base == "" {
		base = "http://localhost:5000"
	}
	gw := gateway.New(base, 10*time.Second, nil)

	if err := run(context.Background(), gw, os.Args[1:], os.Stdout); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, gw Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		return runList(ctx, gw, args[1:], out)
	case "delete":
		return runDelete(ctx, gw, args[1:], out)
	case "export":
		return runExport(ctx, gw, args[1:], out)
	}
	return errUsage
}

func filterFlags(name string, args []string) (gateway.Filter, *string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	q := fs.String("q", "", "search text")
	sort := fs.String("sort", "", "asc|desc")
	course := fs.Int64("course", 0, "course id (records)")
	teacher := fs.String("teacher", "", "teacher (courses)")
	file := fs.String("o", "", "output file (export)")
	if err := fs.Parse(args); err != nil {
		return gateway.Filter{}, nil, fmt.Errorf("%v\n%s", err, usage)
	}
	return gateway.Filter{
		Query:    *q,
		CourseID: *course,
		Teacher:  *teacher,
		Sort:     models.ParseSortOrder(*sort),
	}, file, nil
}

func parseKind(s string) (models.Kind, error) {
	switch s {
	case "students", "courses", "records":
		return models.ParseKind(s), nil
	}
	return 0, fmt.Errorf("unknown collection %q\n%s", s, usage)
}

func runList(ctx context.Context, gw Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	f, _, err := filterFlags("list", args[1:])
	if err != nil {
		return err
	}

	var t view.Table
	switch kind {
	case models.KindStudent:
		xs, err := gw.ListStudents(ctx, f)
		if err != nil {
			return err
		}
		t = view.StudentsTable(xs)
	case models.KindCourse:
		xs, err := gw.ListCourses(ctx, f)
		if err != nil {
			return err
		}
		t = view.CoursesTable(xs)
	default:
		xs, err := gw.ListRecords(ctx, f)
		if err != nil {
			return err
		}
		t = view.RecordsTable(xs)
	}
	printTable(out, t)
	return nil
}

func printTable(out io.Writer, t view.Table) {
	_, _ = color.New(color.FgYellow).Fprintf(out, "\n%s\n", t.Title)
	if len(t.Rows) == 0 {
		_, _ = fmt.Fprintln(out, "Пусто")
		return
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader(append([]string{"ID"}, t.Header...))
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, r := range t.Rows {
		table.Append(append([]string{strconv.FormatInt(r.ID, 10)}, r.Cells...))
	}
	table.Render()
	_, _ = fmt.Fprintf(out, "Всего: %d\n", len(t.Rows))
}

func runDelete(ctx context.Context, gw Client, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errUsage
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("bad id %q", args[1])
	}
	if err := gw.Delete(ctx, kind, id); err != nil {
		return err
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "Удалено: %s #%d\n", kind.Collection(), id)
	return nil
}

func runExport(ctx context.Context, gw Client, args []string, out io.Writer) error {
	f, file, err := filterFlags("export", args)
	if err != nil {
		return err
	}
	records, err := gw.ListRecords(ctx, f)
	if err != nil {
		return err
	}
	data, err := export.RecordsWorkbook(records)
	if err != nil {
		return err
	}

	name := *file
	if name == "" {
		course := view.AllCourses
		if f.CourseID > 0 && len(records) > 0 {
			course = models.Str(records[0].CourseName)
		}
		name = export.RecordsFileName(time.Now(), course)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return err
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "Записей: %d → %s\n", len(records), name)
	return nil
}
