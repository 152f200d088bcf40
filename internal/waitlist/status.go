package waitlist

import "pokerroom/internal/models"

// allowedTransitions — таблица переходов жизненного цикла записи.
// В calledin попасть нельзя ни из одного статуса: это только статус создания.
// У терминальных статусов пустое множество переходов.
var allowedTransitions = map[models.WaitlistStatus][]models.WaitlistStatus{
	models.StatusCalledIn:  {models.StatusWaiting, models.StatusCancelled, models.StatusExpired},
	models.StatusWaiting:   {models.StatusNotified, models.StatusCancelled, models.StatusExpired},
	models.StatusNotified:  {models.StatusSeated, models.StatusCancelled, models.StatusExpired},
	models.StatusSeated:    {},
	models.StatusCancelled: {},
	models.StatusExpired:   {},
}

// IsValidTransition отвечает, допустим ли переход current -> requested.
func IsValidTransition(current, requested models.WaitlistStatus) bool {
	for _, next := range allowedTransitions[current] {
		if next == requested {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, является ли статус терминальным (без исходящих переходов).
func IsTerminal(s models.WaitlistStatus) bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// Statuses возвращает все известные статусы (для валидации входных данных).
func Statuses() []models.WaitlistStatus {
	return []models.WaitlistStatus{
		models.StatusCalledIn,
		models.StatusWaiting,
		models.StatusNotified,
		models.StatusSeated,
		models.StatusCancelled,
		models.StatusExpired,
	}
}

// ParseStatus конвертирует строку в статус, второй результат — валидность.
func ParseStatus(s string) (models.WaitlistStatus, bool) {
	for _, st := range Statuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// NonTerminalStatuses — статусы, в которых запись ещё "живая".
func NonTerminalStatuses() []models.WaitlistStatus {
	return []models.WaitlistStatus{models.StatusCalledIn, models.StatusWaiting, models.StatusNotified}
}
