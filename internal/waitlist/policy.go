package waitlist

import (
	"os"
	"time"

	"pokerroom/internal/models"
)

// Policy — тайминги жизненного цикла. Дедлайн есть только у calledin
// (от created_at) и notified (от notified_at); waiting бессрочен.
type Policy struct {
	CalledInTimeout  time.Duration // сколько ждём прихода игрока после записи
	NotifiedTimeout  time.Duration // сколько ждём ответа на предложение места
	WarningLookahead time.Duration // окно предупреждений "скоро истечёт"
	SweepInterval    time.Duration // период фонового обхода
	MinutesPerSlot   int           // эвристика оценки ожидания: мест впереди * минут
}

func DefaultPolicy() Policy {
	return Policy{
		CalledInTimeout:  90 * time.Minute,
		NotifiedTimeout:  5 * time.Minute,
		WarningLookahead: 10 * time.Minute,
		SweepInterval:    60 * time.Second,
		MinutesPerSlot:   15,
	}
}

// PolicyFromEnv читает переопределения таймингов из окружения,
// отсутствующие или невалидные значения остаются дефолтными.
func PolicyFromEnv() Policy {
	p := DefaultPolicy()
	if d, err := time.ParseDuration(os.Getenv("WAITLIST_CALLEDIN_TIMEOUT")); err == nil && d > 0 {
		p.CalledInTimeout = d
	}
	if d, err := time.ParseDuration(os.Getenv("WAITLIST_NOTIFIED_TIMEOUT")); err == nil && d > 0 {
		p.NotifiedTimeout = d
	}
	if d, err := time.ParseDuration(os.Getenv("WAITLIST_WARNING_LOOKAHEAD")); err == nil && d > 0 {
		p.WarningLookahead = d
	}
	if d, err := time.ParseDuration(os.Getenv("WAITLIST_SWEEP_INTERVAL")); err == nil && d > 0 {
		p.SweepInterval = d
	}
	return p
}

// Deadline возвращает абсолютный срок жизни записи в её текущем статусе.
// Второй результат false — дедлайна нет (статус бессрочный либо якорная
// метка отсутствует; отсутствие якоря трактуем как "нет дедлайна", чтобы
// не выбивать в expired битые данные).
func (p Policy) Deadline(entry *models.WaitlistEntry) (time.Time, bool) {
	switch entry.Status {
	case models.StatusCalledIn:
		if entry.CreatedAt.IsZero() {
			return time.Time{}, false
		}
		return entry.CreatedAt.Add(p.CalledInTimeout), true
	case models.StatusNotified:
		if entry.NotifiedAt == nil {
			return time.Time{}, false
		}
		return entry.NotifiedAt.Add(p.NotifiedTimeout), true
	default:
		return time.Time{}, false
	}
}

// IsExpired — чистый предикат для детерминированных тестов без подмены часов.
func (p Policy) IsExpired(entry *models.WaitlistEntry, now time.Time) bool {
	deadline, ok := p.Deadline(entry)
	if !ok {
		return false
	}
	return !now.Before(deadline)
}

// MinutesRemaining — целое число минут до дедлайна (округление вверх),
// 0 если срок уже прошёл. ok=false, когда дедлайна нет.
func (p Policy) MinutesRemaining(entry *models.WaitlistEntry, now time.Time) (int, bool) {
	deadline, ok := p.Deadline(entry)
	if !ok {
		return 0, false
	}
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0, true
	}
	mins := int((remaining + time.Minute - 1) / time.Minute)
	return mins, true
}
