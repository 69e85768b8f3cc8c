package handlers

import (
	"strconv"
	"strings"

	"github.com/Spok95/gradebook-bot/internal/console"
	"github.com/Spok95/gradebook-bot/internal/models"
)

// Данные inline-кнопок: "gb:<действие>[:<аргумент>...]". Telegram ограничивает их 64 байтами,
// поэтому опции передаются индексом в списке, а не значением.
const cbPrefix = "gb:"

const (
	actSort       = "sort"
	actSearch     = "search"
	actClear      = "clear"
	actExpand     = "expand"
	actCollapse   = "collapse"
	actOption     = "opt"
	actGrade      = "grade"
	actAddKind    = "addkind"
	actDelKind    = "delkind"
	actPick       = "pick"
	actField      = "field"
	actSubmit     = "submit"
	actCancelEdit = "canceledit"
	actDelRow     = "delrow"
	actDeleteOK   = "delok"
	actPage       = "page"
	actRefresh    = "refresh"
	actNoop       = "noop"
)

// Ожидаемый текстовый ввод: "search:<коллекция>" или "field:<коллекция>:<поле>".
const (
	awaitSearch = "search"
	awaitField  = "field"
)

var (
	cbCollapse    = cbPrefix + actCollapse
	cbExpandGrade = cbPrefix + actExpand + ":" + expandGrade
	cbSubmit      = cbPrefix + actSubmit
	cbCancelEdit  = cbPrefix + actCancelEdit
	cbDeleteOK    = cbPrefix + actDeleteOK
	cbRefresh     = cbPrefix + actRefresh
	cbNoop        = cbPrefix + actNoop
)

func cb(parts ...string) string { return cbPrefix + strings.Join(parts, ":") }

func cbSort(k models.Kind, s models.SortOrder) string { return cb(actSort, k.Collection(), string(s)) }
func cbSearch(k models.Kind) string                   { return cb(actSearch, k.Collection()) }
func cbClear(k models.Kind) string                    { return cb(actClear, k.Collection()) }
func cbExpand(t console.OptionsTarget) string         { return cb(actExpand, strconv.Itoa(int(t))) }
func cbOption(t console.OptionsTarget, i int) string {
	return cb(actOption, strconv.Itoa(int(t)), strconv.Itoa(i))
}
func cbGrade(i int) string                { return cb(actGrade, strconv.Itoa(i)) }
func cbAddKind(k models.Kind) string      { return cb(actAddKind, k.Collection()) }
func cbDelKind(k models.Kind) string      { return cb(actDelKind, k.Collection()) }
func cbPick(id int64) string              { return cb(actPick, strconv.FormatInt(id, 10)) }
func cbField(key string) string           { return cb(actField, key) }
func cbDelRow(id int64) string            { return cb(actDelRow, strconv.FormatInt(id, 10)) }
func cbPage(offset int) string            { return cb(actPage, strconv.Itoa(offset)) }
func awaitSearchFor(k models.Kind) string { return awaitSearch + ":" + k.Collection() }
func awaitFieldFor(k models.Kind, key string) string {
	return awaitField + ":" + k.Collection() + ":" + key
}

// Action: разобранные данные кнопки.
type Action struct {
	Name string
	Args []string
}

// ParseAction: false, если кнопка не от консоли.
func ParseAction(data string) (Action, bool) {
	rest, ok := strings.CutPrefix(data, cbPrefix)
	if !ok || rest == "" {
		return Action{}, false
	}
	parts := strings.Split(rest, ":")
	return Action{Name: parts[0], Args: parts[1:]}, true
}

func (a Action) Arg(i int) string {
	if i < len(a.Args) {
		return a.Args[i]
	}
	return ""
}

func (a Action) Int(i int) (int, bool) {
	n, err := strconv.Atoi(a.Arg(i))
	return n, err == nil
}

func (a Action) ID(i int) (int64, bool) {
	n, err := strconv.ParseInt(a.Arg(i), 10, 64)
	return n, err == nil && n > 0
}

func parseOptionsTarget(s string) (console.OptionsTarget, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	t := console.OptionsTarget(n)
	switch t {
	case console.OptionsCourseFilter, console.OptionsTeacherFilter, console.OptionsRecordStudent, console.OptionsRecordCourse:
		return t, true
	}
	return 0, false
}
