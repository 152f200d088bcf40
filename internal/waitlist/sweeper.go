package waitlist

import (
	"fmt"
	"log"
	"time"

	"pokerroom/internal/models"

	"github.com/robfig/cron/v3"
)

// Sweeper — фоновый обход просроченных записей. Дедлайны ленивые: живого
// таймера на запись нет, просроченная запись может провисеть до одного
// интервала обхода. Запускается либо по cron-расписанию (Start/Stop), либо
// разово по HTTP-триггеру (CheckAndExpireEntries).
type Sweeper struct {
	store    Store
	notifier Notifier
	policy   Policy
	now      func() time.Time
	cron     *cron.Cron
}

func NewSweeper(store Store, notifier Notifier, policy Policy) *Sweeper {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Sweeper{
		store:    store,
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
	}
}

// SetClock подменяет источник времени (для тестов).
func (s *Sweeper) SetClock(now func() time.Time) { s.now = now }

// CheckAndExpireEntries находит записи зала с истёкшим дедлайном и одним
// массовым обновлением переводит их в expired (инициатор system).
// roomID == 0 — обход всех залов. Ноль совпадений — не ошибка. Ошибка
// выборки или обновления логируется, обход бросается до следующего тика.
func (s *Sweeper) CheckAndExpireEntries(roomID uint) error {
	entries, err := s.store.ListEntries(EntryFilter{
		RoomID:   roomID,
		Statuses: []models.WaitlistStatus{models.StatusCalledIn, models.StatusNotified},
	})
	if err != nil {
		log.Println("Обход просроченных записей: ошибка выборки:", err)
		return fmt.Errorf("fetch pending entries: %w", err)
	}

	now := s.now()
	var overdue []models.WaitlistEntry
	for _, e := range entries {
		if s.policy.IsExpired(&e, now) {
			overdue = append(overdue, e)
		}
	}
	if len(overdue) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(overdue))
	for _, e := range overdue {
		ids = append(ids, e.ID)
	}
	updates := map[string]interface{}{
		"status":       models.StatusExpired,
		"cancelled_at": now,
		"cancelled_by": models.ActorSystem,
	}
	if err := s.store.BulkUpdateEntries(ids, updates); err != nil {
		log.Println("Обход просроченных записей: ошибка обновления:", err)
		return fmt.Errorf("expire entries: %w", err)
	}

	for i := range overdue {
		old := overdue[i].Status
		overdue[i].Status = models.StatusExpired
		overdue[i].CancelledAt = &now
		overdue[i].CancelledBy = models.ActorSystem
		if err := s.notifier.StatusChanged(&overdue[i], old, models.StatusExpired); err != nil {
			log.Printf("Уведомление об истечении записи %d не доставлено: %v", overdue[i].ID, err)
		}
	}
	log.Printf("Обход завершён: переведено в expired %d записей", len(overdue))
	return nil
}

// SendExpiryWarnings рассылает предупреждения записям, до дедлайна которых
// осталось меньше окна WarningLookahead. Состояние не меняет.
func (s *Sweeper) SendExpiryWarnings(roomID uint) error {
	entries, err := s.store.ListEntries(EntryFilter{
		RoomID:   roomID,
		Statuses: []models.WaitlistStatus{models.StatusCalledIn, models.StatusNotified},
	})
	if err != nil {
		return fmt.Errorf("fetch pending entries: %w", err)
	}

	now := s.now()
	for i := range entries {
		deadline, ok := s.policy.Deadline(&entries[i])
		if !ok {
			continue
		}
		remaining := deadline.Sub(now)
		if remaining <= 0 || remaining > s.policy.WarningLookahead {
			continue
		}
		mins, _ := s.policy.MinutesRemaining(&entries[i], now)
		if err := s.notifier.ExpiryWarning(&entries[i], mins); err != nil {
			log.Printf("Предупреждение об истечении записи %d не доставлено: %v", entries[i].ID, err)
		}
	}
	return nil
}

// Start запускает периодический обход по всем залам.
func (s *Sweeper) Start() error {
	if s.cron != nil {
		return nil
	}
	c := cron.New(cron.WithSeconds())
	spec := fmt.Sprintf("@every %s", s.policy.SweepInterval)
	if _, err := c.AddFunc(spec, func() {
		// Ошибки уже залогированы, повтор — на следующем тике.
		_ = s.CheckAndExpireEntries(0)
		_ = s.SendExpiryWarnings(0)
	}); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()
	s.cron = c
	log.Println("Фоновый обход листа ожидания запущен, интервал:", s.policy.SweepInterval)
	return nil
}

// Stop останавливает периодический обход.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}
