package waitlist

import "pokerroom/internal/models"

// Notifier получает события смены статуса и предупреждения об истечении.
// Доставка best-effort: ошибки нотификатора логируются менеджером и никогда
// не роняют саму операцию.
type Notifier interface {
	StatusChanged(entry *models.WaitlistEntry, oldStatus, newStatus models.WaitlistStatus) error
	ExpiryWarning(entry *models.WaitlistEntry, minutesRemaining int) error
}

// NopNotifier — заглушка по умолчанию, чтобы ядро тестировалось без
// реального бэкенда уведомлений.
type NopNotifier struct{}

func (NopNotifier) StatusChanged(*models.WaitlistEntry, models.WaitlistStatus, models.WaitlistStatus) error {
	return nil
}

func (NopNotifier) ExpiryWarning(*models.WaitlistEntry, int) error {
	return nil
}
