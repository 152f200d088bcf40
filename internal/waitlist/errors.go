package waitlist

import (
	"errors"
	"fmt"

	"pokerroom/internal/models"
)

var (
	// ErrNotFound — запись или сущность, на которую она ссылается, не существует.
	ErrNotFound = errors.New("waitlist entry not found")

	// ErrNoActiveSession — попытка посадить игрока за стол без открытой сессии.
	ErrNoActiveSession = errors.New("table has no active session")

	// ErrNotWaiting — операция с позицией применима только к статусу waiting.
	ErrNotWaiting = errors.New("entry is not in waiting status")
)

// InvalidTransitionError несёт пару (from, to) отвергнутого перехода.
type InvalidTransitionError struct {
	From models.WaitlistStatus
	To   models.WaitlistStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// IsInvalidTransition — удобная проверка для обработчиков HTTP.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

// PartialError: перевод записи в seated прошёл, но зависимый шаг упал.
// Откат не выполняется — запись остаётся seated, персонал должен
// разобраться вручную (окно несогласованности принято осознанно).
type PartialError struct {
	EntryID    uint
	SessionErr error // создание записи о месте / поиск открытой сессии
	CancelErr  error // отмена остальных заявок игрока
}

func (e *PartialError) Error() string {
	switch {
	case e.SessionErr != nil && e.CancelErr != nil:
		return fmt.Sprintf("entry %d seated, but seat record failed (%v) and sibling cancellation failed (%v)", e.EntryID, e.SessionErr, e.CancelErr)
	case e.SessionErr != nil:
		return fmt.Sprintf("entry %d seated, but seat record failed: %v", e.EntryID, e.SessionErr)
	default:
		return fmt.Sprintf("entry %d seated, but sibling cancellation failed: %v", e.EntryID, e.CancelErr)
	}
}

func (e *PartialError) Unwrap() error {
	if e.SessionErr != nil {
		return e.SessionErr
	}
	return e.CancelErr
}
