package handlers

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/olekukonko/tablewriter"

	"github.com/Spok95/gradebook-bot/internal/console"
	"github.com/Spok95/gradebook-bot/internal/models"
	"github.com/Spok95/gradebook-bot/internal/view"
)

const (
	pageSize    = 10
	cellWidth   = 22
	buttonWidth = 48
)

// Render собирает текст страницы (HTML) и её inline-клавиатуру.
func Render(st *console.State, s *Screen) (string, tgbotapi.InlineKeyboardMarkup) {
	var text string
	var rows [][]tgbotapi.InlineKeyboardButton

	if s.Expanded != "" {
		text, rows = renderExpanded(s)
	} else {
		switch s.Page {
		case PageStudents:
			text, rows = renderStudents(st, s)
		case PageCourses:
			text, rows = renderCourses(st, s)
		case PageEditor:
			text, rows = renderEditor(s)
		case PageDelete:
			text, rows = renderDelete(st, s)
		default:
			text, rows = renderRecords(st, s)
		}
	}
	if s.Awaiting != "" {
		text += "\n\n✍️ " + html.EscapeString(awaitPrompt(s.Awaiting)) + " или «Отмена»."
	}
	if len(rows) == 0 {
		return text, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: make([][]tgbotapi.InlineKeyboardButton, 0)}
	}
	return text, tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderRecords(st *console.State, s *Screen) (string, [][]tgbotapi.InlineKeyboardButton) {
	tbl := s.Tables[console.TargetRecords]
	var b strings.Builder
	b.WriteString("<b>" + html.EscapeString(view.RecordsTable(nil).Title) + "</b>\n")
	if q := st.Records.Query; q != "" {
		b.WriteString("🔎 Поиск: «" + html.EscapeString(q) + "»\n")
	}
	b.WriteString("📚 Курс: " + html.EscapeString(selectedLabel(s.Options[console.OptionsCourseFilter], view.AllCourses)) + "\n")
	b.WriteString("↕️ Дата: " + html.EscapeString(activeSegment(s.Sorts[console.TargetRecords])) + "\n\n")
	b.WriteString(renderTable(tbl, s.Offset))

	var rows [][]tgbotapi.InlineKeyboardButton
	rows = append(rows, sortRow(models.KindRecord, s.Sorts[console.TargetRecords]))
	rows = append(rows, searchRow(models.KindRecord, st.Records.Query))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		button("📚 Курс: "+selectedLabel(s.Options[console.OptionsCourseFilter], view.AllCourses), cbExpand(console.OptionsCourseFilter)),
	))
	rows = appendNav(rows, len(tbl.Rows), s.Offset)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("🔄 Обновить", cbRefresh)))
	return b.String(), rows
}

func renderStudents(st *console.State, s *Screen) (string, [][]tgbotapi.InlineKeyboardButton) {
	tbl := s.Tables[console.TargetStudents]
	var b strings.Builder
	b.WriteString("<b>" + html.EscapeString(view.StudentsTable(nil).Title) + "</b>\n")
	if q := st.Students.Query; q != "" {
		b.WriteString("🔎 Поиск: «" + html.EscapeString(q) + "»\n")
	}
	b.WriteString("↕️ Дата рождения: " + html.EscapeString(activeSegment(s.Sorts[console.TargetStudents])) + "\n\n")
	b.WriteString(renderTable(tbl, s.Offset))

	var rows [][]tgbotapi.InlineKeyboardButton
	rows = append(rows, sortRow(models.KindStudent, s.Sorts[console.TargetStudents]))
	rows = append(rows, searchRow(models.KindStudent, st.Students.Query))
	rows = appendNav(rows, len(tbl.Rows), s.Offset)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("🔄 Обновить", cbRefresh)))
	return b.String(), rows
}

func renderCourses(st *console.State, s *Screen) (string, [][]tgbotapi.InlineKeyboardButton) {
	tbl := s.Tables[console.TargetCourses]
	teacher := selectedLabel(s.Options[console.OptionsTeacherFilter], view.AllTeachers)
	var b strings.Builder
	b.WriteString("<b>" + html.EscapeString(view.CoursesTable(nil).Title) + "</b>\n")
	if q := st.Courses.Query; q != "" {
		b.WriteString("🔎 Поиск: «" + html.EscapeString(q) + "»\n")
	}
	b.WriteString("👤 Преподаватель: " + html.EscapeString(teacher) + "\n\n")
	b.WriteString(renderTable(tbl, s.Offset))

	var rows [][]tgbotapi.InlineKeyboardButton
	rows = append(rows, searchRow(models.KindCourse, st.Courses.Query))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		button("👤 Преподаватель: "+teacher, cbExpand(console.OptionsTeacherFilter)),
	))
	rows = appendNav(rows, len(tbl.Rows), s.Offset)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("🔄 Обновить", cbRefresh)))
	return b.String(), rows
}

func renderEditor(s *Screen) (string, [][]tgbotapi.InlineKeyboardButton) {
	var rows [][]tgbotapi.InlineKeyboardButton
	var active models.Kind
	if s.Form != nil {
		active = s.Form.Kind
	}
	rows = append(rows, kindRow(active, cbAddKind))
	if s.Form == nil {
		return "<b>✏️ Добавление и изменение</b>\nВыберите таблицу.", rows
	}
	f := s.Form

	var b strings.Builder
	if f.EditVisible() {
		fmt.Fprintf(&b, "<b>✏️ Изменение: %s #%d</b>\n", html.EscapeString(f.Kind.Title()), f.TargetID)
	} else {
		fmt.Fprintf(&b, "<b>➕ Добавление: %s</b>\n", html.EscapeString(f.Kind.Title()))
	}
	var fieldButtons []tgbotapi.InlineKeyboardButton
	for _, fld := range console.Fields(f.Kind) {
		b.WriteString(html.EscapeString(fld.Label) + ": " + html.EscapeString(fieldValue(s, fld, f.Values[fld.Key])) + "\n")
		fieldButtons = append(fieldButtons, button(fieldIcon(fld.Type)+" "+fld.Label, fieldCallback(fld)))
	}
	for i := 0; i < len(fieldButtons); i += 2 {
		end := min(i+2, len(fieldButtons))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(fieldButtons[i:end]...))
	}
	if f.AddVisible() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("➕ Добавить", cbSubmit)))
	}
	if f.EditVisible() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			button("💾 Сохранить", cbSubmit),
			button("↩️ Отменить изменение", cbCancelEdit),
		))
	}

	tbl := s.Tables[console.TargetAddList]
	b.WriteString("\n" + renderTable(tbl, s.Offset))
	if len(tbl.Rows) > 0 {
		b.WriteString("\nНажмите на строку, чтобы изменить её.")
	}
	from, to := window(len(tbl.Rows), s.Offset)
	for _, r := range tbl.Rows[from:to] {
		label := r.String()
		if f.EditVisible() && r.ID == f.TargetID {
			label = "✏️ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(label, cbPick(r.ID))))
	}
	rows = appendNav(rows, len(tbl.Rows), s.Offset)
	return b.String(), rows
}

func renderDelete(st *console.State, s *Screen) (string, [][]tgbotapi.InlineKeyboardButton) {
	kind := st.Delete.Kind
	rows := [][]tgbotapi.InlineKeyboardButton{kindRow(kind, cbDelKind)}
	if !kind.Valid() {
		return "<b>🗑 Удаление</b>\nВыберите таблицу.", rows
	}
	tbl := s.Tables[console.TargetDeleteList]
	var b strings.Builder
	fmt.Fprintf(&b, "<b>🗑 Удаление: %s</b>\n\n", html.EscapeString(kind.Title()))
	b.WriteString(renderTable(tbl, s.Offset))

	from, to := window(len(tbl.Rows), s.Offset)
	for _, r := range tbl.Rows[from:to] {
		mark := "▫️ "
		if r.Selected {
			mark = "🔴 "
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(mark+r.String(), cbDelRow(r.ID))))
	}
	rows = appendNav(rows, len(tbl.Rows), s.Offset)
	if s.Confirm != nil {
		b.WriteString("\nУдалить выбранную строку?")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("🗑 Удалить выбранное", cbDeleteOK)))
	}
	return b.String(), rows
}

func renderExpanded(s *Screen) (string, [][]tgbotapi.InlineKeyboardButton) {
	var rows [][]tgbotapi.InlineKeyboardButton
	if s.Expanded == expandGrade {
		cur := ""
		if s.Form != nil {
			cur = s.Form.Values["grade"]
		}
		for i, g := range view.Grades {
			label := view.GradeLabel(g)
			if g == cur {
				label = "✅ " + label
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(label, cbGrade(i))))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("⬅️ Назад", cbCollapse)))
		return "Выберите оценку:", rows
	}

	target, ok := parseOptionsTarget(s.Expanded)
	if !ok {
		return "Список недоступен.", [][]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardRow(button("⬅️ Назад", cbCollapse)),
		}
	}
	opts := s.Options[target]
	from, to := window(len(opts), s.Offset)
	for i := from; i < to; i++ {
		label := opts[i].Label
		if opts[i].Selected {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(label, cbOption(target, i))))
	}
	rows = appendNav(rows, len(opts), s.Offset)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("⬅️ Назад", cbCollapse)))
	if len(opts) == 0 {
		return optionsTitle(target) + "\nСписок пуст.", rows
	}
	return optionsTitle(target), rows
}

// renderTable: видимая часть таблицы моноширинным блоком.
func renderTable(t view.Table, offset int) string {
	if len(t.Rows) == 0 {
		return "<i>Нет данных</i>"
	}
	from, to := window(len(t.Rows), offset)

	var buf bytes.Buffer
	w := tablewriter.NewWriter(&buf)
	w.SetHeader(t.Header)
	w.SetAutoFormatHeaders(false)
	w.SetAutoWrapText(false)
	w.SetBorder(false)
	for _, r := range t.Rows[from:to] {
		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			cells[i] = truncate(c, cellWidth)
		}
		if r.Selected && len(cells) > 0 {
			cells[0] = "▶ " + cells[0]
		}
		w.Append(cells)
	}
	w.Render()

	out := "<pre>" + html.EscapeString(buf.String()) + "</pre>"
	if len(t.Rows) > pageSize {
		out += fmt.Sprintf("\nСтроки %d–%d из %d", from+1, to, len(t.Rows))
	}
	return out
}

// window: границы видимой страницы; offset прижимается к допустимому диапазону.
func window(n, offset int) (int, int) {
	if offset < 0 || offset >= n {
		offset = 0
	}
	return offset, min(offset+pageSize, n)
}

func appendNav(rows [][]tgbotapi.InlineKeyboardButton, n, offset int) [][]tgbotapi.InlineKeyboardButton {
	if n <= pageSize {
		return rows
	}
	from, to := window(n, offset)
	var nav []tgbotapi.InlineKeyboardButton
	if from > 0 {
		nav = append(nav, button("◀️", cbPage(max(from-pageSize, 0))))
	}
	nav = append(nav, button(fmt.Sprintf("%d/%d", from/pageSize+1, (n+pageSize-1)/pageSize), cbNoop))
	if to < n {
		nav = append(nav, button("▶️", cbPage(to)))
	}
	return append(rows, tgbotapi.NewInlineKeyboardRow(nav...))
}

func sortRow(kind models.Kind, segments []view.Segment) []tgbotapi.InlineKeyboardButton {
	if len(segments) == 0 {
		segments = view.Segments(models.SortDefault)
	}
	var row []tgbotapi.InlineKeyboardButton
	for _, sg := range segments {
		label := sg.Label
		if sg.Active {
			label = "• " + label
		}
		row = append(row, button(label, cbSort(kind, sg.Value)))
	}
	return row
}

func searchRow(kind models.Kind, query string) []tgbotapi.InlineKeyboardButton {
	row := []tgbotapi.InlineKeyboardButton{button("🔎 Поиск", cbSearch(kind))}
	if query != "" {
		row = append(row, button("✖️ Сбросить поиск", cbClear(kind)))
	}
	return row
}

func kindRow(active models.Kind, data func(models.Kind) string) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	for _, k := range models.Kinds {
		label := k.Title()
		if k == active {
			label = "• " + label
		}
		row = append(row, button(label, data(k)))
	}
	return row
}

func fieldIcon(t console.FieldType) string {
	switch t {
	case console.FieldDate:
		return "📅"
	case console.FieldStudent, console.FieldCourse, console.FieldGrade:
		return "📋"
	default:
		return "✏️"
	}
}

func fieldCallback(f console.Field) string {
	switch f.Type {
	case console.FieldStudent:
		return cbExpand(console.OptionsRecordStudent)
	case console.FieldCourse:
		return cbExpand(console.OptionsRecordCourse)
	case console.FieldGrade:
		return cbExpandGrade
	default:
		return cbField(f.Key)
	}
}

// fieldValue: значение поля формы в том виде, в каком его видит человек.
func fieldValue(s *Screen, f console.Field, v string) string {
	switch f.Type {
	case console.FieldStudent:
		return optionLabel(s.Options[console.OptionsRecordStudent], v)
	case console.FieldCourse:
		return optionLabel(s.Options[console.OptionsRecordCourse], v)
	case console.FieldGrade:
		return view.GradeLabel(v)
	case console.FieldDate:
		if v == "" {
			return "—"
		}
		return view.FormatDate(v)
	}
	if strings.TrimSpace(v) == "" {
		return "—"
	}
	return v
}

func optionLabel(opts []view.Option, value string) string {
	if value == "" {
		return "—"
	}
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return "#" + value
}

func selectedLabel(opts []view.Option, def string) string {
	for _, o := range opts {
		if o.Selected {
			return o.Label
		}
	}
	return def
}

func activeSegment(segments []view.Segment) string {
	for _, sg := range segments {
		if sg.Active {
			return sg.Label
		}
	}
	return view.Segments(models.SortDefault)[0].Label
}

func optionsTitle(t console.OptionsTarget) string {
	switch t {
	case console.OptionsCourseFilter:
		return "Фильтр по курсу:"
	case console.OptionsTeacherFilter:
		return "Фильтр по преподавателю:"
	case console.OptionsRecordStudent:
		return "Выберите студента:"
	default:
		return "Выберите курс:"
	}
}

func awaitPrompt(awaiting string) string {
	name, arg, _ := strings.Cut(awaiting, ":")
	switch name {
	case awaitSearch:
		return "Введите строку поиска"
	case awaitField:
		if kind, key, ok := strings.Cut(arg, ":"); ok {
			for _, f := range console.Fields(models.ParseKind(kind)) {
				if f.Key == key {
					if f.Type == console.FieldDate {
						return "Введите «" + f.Label + "» в формате ДД.ММ.ГГГГ"
					}
					return "Введите «" + f.Label + "»"
				}
			}
		}
	}
	return "Введите значение"
}

func button(label, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(truncate(label, buttonWidth), data)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
