package models

// SortOrder: три положения переключателя сортировки.
// Поле сортировки неявное: дата у записей, дата рождения у студентов.
type SortOrder string

const (
	SortDefault SortOrder = "default"
	SortAsc     SortOrder = "asc"
	SortDesc    SortOrder = "desc"
)

// ParseSortOrder: всё неизвестное считается default.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortAsc:
		return SortAsc
	case SortDesc:
		return SortDesc
	default:
		return SortDefault
	}
}
