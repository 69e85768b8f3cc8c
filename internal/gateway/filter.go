package gateway

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Spok95/gradebook-bot/internal/models"
)

// Filter: параметры списка. Пустые значения в запрос не попадают.
type Filter struct {
	Query    string
	CourseID int64
	Teacher  string
	Sort     models.SortOrder
}

func (f Filter) Values() url.Values {
	v := url.Values{}
	if q := strings.TrimSpace(f.Query); q != "" {
		v.Set("q", q)
	}
	if f.CourseID > 0 {
		v.Set("course_id", strconv.FormatInt(f.CourseID, 10))
	}
	if t := strings.TrimSpace(f.Teacher); t != "" {
		v.Set("teacher", t)
	}
	if f.Sort == models.SortAsc || f.Sort == models.SortDesc {
		v.Set("sort", string(f.Sort))
	}
	return v
}
