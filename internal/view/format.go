package view

import (
	"errors"
	"strings"
	"time"
)

const (
	isoDate     = "2006-01-02"
	displayDate = "02.01.2006"
)

// FormatDate: ISO-дата → ДД.ММ.ГГГГ. Пустая строка остаётся пустой,
// нераспознанное значение возвращается как есть.
func FormatDate(iso string) string {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return ""
	}
	if t, err := time.Parse(isoDate, iso); err == nil {
		return t.Format(displayDate)
	}
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t.Format(displayDate)
	}
	// "2024-01-10T00:00:00" без зоны
	if len(iso) > len(isoDate) && iso[len(isoDate)] == 'T' {
		if t, err := time.Parse(isoDate, iso[:len(isoDate)]); err == nil {
			return t.Format(displayDate)
		}
	}
	return iso
}

var ErrBadDate = errors.New("дата должна быть в формате ДД.ММ.ГГГГ или ГГГГ-ММ-ДД")

// ParseDate приводит введённую пользователем дату к ISO.
func ParseDate(input string) (string, error) {
	s := strings.TrimSpace(input)
	for _, layout := range []string{displayDate, isoDate, "2.1.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate), nil
		}
	}
	return "", ErrBadDate
}
