package gateway

import (
	"errors"
	"fmt"
)

// ErrRequest означает любой неуспешный вызов API (транспорт или не-2xx).
// Консоль не различает причины и показывает пользователю одно общее сообщение.
var ErrRequest = errors.New("gateway: request failed")

type Error struct {
	Op     string // "GET /api/students"
	Status int    // 0: ошибка транспорта
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.Status, e.Body)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRequest, e.Err}
	}
	return []error{ErrRequest}
}

// IsServerSide: 5xx или транспорт; такие ошибки стоит отправлять в Sentry.
func IsServerSide(err error) bool {
	var ge *Error
	if !errors.As(err, &ge) {
		return false
	}
	return ge.Status == 0 || ge.Status >= 500
}
