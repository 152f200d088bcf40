package waitlist

import (
	"fmt"
	"log"
	"time"

	"pokerroom/internal/models"
)

// Manager — единственная точка изменения статусов записей.
// Все зависимости передаются явно, глобального состояния нет.
type Manager struct {
	store    Store
	notifier Notifier
	policy   Policy
	now      func() time.Time
}

func NewManager(store Store, notifier Notifier, policy Policy) *Manager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Manager{
		store:    store,
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
	}
}

// SetClock подменяет источник времени (для тестов).
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Policy возвращает действующие тайминги.
func (m *Manager) Policy() Policy { return m.policy }

// UpdateOptions — необязательные параметры перехода.
type UpdateOptions struct {
	// CancelledBy переопределяет, от чьего имени записана отмена
	// (по умолчанию — actor самого перехода).
	CancelledBy models.Actor
}

// Create добавляет новую запись в статусе calledin. Это единственный способ
// попасть в calledin — переходов в него нет.
func (m *Manager) Create(entry *models.WaitlistEntry) error {
	entry.Status = models.StatusCalledIn
	if err := m.store.CreateEntry(entry); err != nil {
		return fmt.Errorf("create waitlist entry: %w", err)
	}
	return nil
}

// UpdateStatus выполняет валидированный переход записи в newStatus.
// Порядок шагов: загрузка -> проверка таблицы переходов -> простановка
// временных меток -> одно атомарное обновление -> уведомление.
// Ошибка нотификатора не считается ошибкой перехода.
func (m *Manager) UpdateStatus(entryID uint, newStatus models.WaitlistStatus, actor models.Actor, opts *UpdateOptions) error {
	entry, err := m.store.GetEntry(entryID)
	if err != nil {
		return err
	}

	oldStatus := entry.Status
	if !IsValidTransition(oldStatus, newStatus) {
		return &InvalidTransitionError{From: oldStatus, To: newStatus}
	}

	now := m.now()
	updates := map[string]interface{}{"status": newStatus}

	switch newStatus {
	case models.StatusWaiting:
		updates["checked_in_at"] = now
		// Позиция выдаётся при входе в очередь: хвост + 1.
		maxPos, err := m.store.MaxPosition(entry.GameID)
		if err != nil {
			return fmt.Errorf("compute queue position: %w", err)
		}
		updates["position"] = maxPos + 1
	case models.StatusNotified:
		updates["notified_at"] = now
	case models.StatusCancelled, models.StatusExpired:
		by := actor
		if opts != nil && opts.CancelledBy != "" {
			by = opts.CancelledBy
		}
		updates["cancelled_at"] = now
		updates["cancelled_by"] = by
	}

	if err := m.store.UpdateEntry(entryID, updates); err != nil {
		return fmt.Errorf("persist status update: %w", err)
	}

	m.applyUpdates(entry, updates)
	if err := m.notifier.StatusChanged(entry, oldStatus, newStatus); err != nil {
		log.Printf("Уведомление о смене статуса записи %d не доставлено: %v", entryID, err)
	}
	return nil
}

// applyUpdates отражает уже сохранённые изменения в локальной копии,
// чтобы нотификатор видел актуальное состояние.
func (m *Manager) applyUpdates(entry *models.WaitlistEntry, updates map[string]interface{}) {
	if s, ok := updates["status"].(models.WaitlistStatus); ok {
		entry.Status = s
	}
	if t, ok := updates["checked_in_at"].(time.Time); ok {
		entry.CheckedInAt = &t
	}
	if t, ok := updates["notified_at"].(time.Time); ok {
		entry.NotifiedAt = &t
	}
	if t, ok := updates["cancelled_at"].(time.Time); ok {
		entry.CancelledAt = &t
	}
	if a, ok := updates["cancelled_by"].(models.Actor); ok {
		entry.CancelledBy = a
	}
	if p, ok := updates["position"].(int); ok {
		entry.Position = p
	}
}

// CheckIn — игрок пришёл в зал: calledin -> waiting.
func (m *Manager) CheckIn(entryID uint, actor models.Actor) error {
	return m.UpdateStatus(entryID, models.StatusWaiting, actor, nil)
}

// Notify — игроку предложено место: waiting -> notified.
func (m *Manager) Notify(entryID uint, actor models.Actor) error {
	return m.UpdateStatus(entryID, models.StatusNotified, actor, nil)
}

// Cancel — явная отмена записи игроком или персоналом.
func (m *Manager) Cancel(entryID uint, actor models.Actor) error {
	return m.UpdateStatus(entryID, models.StatusCancelled, actor, nil)
}

// Expire — принудительное истечение; инициатор всегда system.
func (m *Manager) Expire(entryID uint) error {
	return m.UpdateStatus(entryID, models.StatusExpired, models.ActorSystem, nil)
}

// List — выборка записей через хранилище (для HTTP-слоя и свипера).
func (m *Manager) List(f EntryFilter) ([]models.WaitlistEntry, error) {
	return m.store.ListEntries(f)
}

// Get возвращает одну запись.
func (m *Manager) Get(entryID uint) (*models.WaitlistEntry, error) {
	return m.store.GetEntry(entryID)
}

// SeatPlayer — составная операция посадки:
//  1. запись переводится в seated (откат дальше не выполняется);
//  2. у стола должна быть открытая сессия;
//  3. создаётся запись о занятом месте;
//  4. при cancelOthers остальные живые заявки игрока отменяются от имени system.
//
// Свободность места заранее проверяет вызывающая сторона — здесь повторной
// проверки нет, гонку закрывает уникальный индекс хранилища.
// Ошибки шагов 2-4 возвращаются как *PartialError: запись уже seated,
// и персонал должен увидеть предупреждение.
func (m *Manager) SeatPlayer(entryID, tableID uint, seatNumber int, notes string, cancelOthers bool) error {
	entry, err := m.store.GetEntry(entryID)
	if err != nil {
		return err
	}
	if entry.PlayerID == 0 {
		return ErrNotFound
	}

	if err := m.UpdateStatus(entryID, models.StatusSeated, models.ActorStaff, nil); err != nil {
		return err
	}

	partial := &PartialError{EntryID: entryID}

	session, err := m.store.ActiveTableSession(tableID)
	if err != nil {
		partial.SessionErr = err
	} else {
		ps := &models.PlayerSession{
			PlayerID:       entry.PlayerID,
			TableSessionID: session.ID,
			SeatNumber:     seatNumber,
			StartedAt:      m.now(),
			Notes:          notes,
		}
		if err := m.store.CreatePlayerSession(ps); err != nil {
			partial.SessionErr = fmt.Errorf("create seat record: %w", err)
		}
	}

	if cancelOthers {
		if err := m.cancelSiblingEntries(entry.PlayerID, entryID); err != nil {
			partial.CancelErr = err
			log.Printf("Отмена остальных заявок игрока %d не удалась: %v", entry.PlayerID, err)
		}
	}

	if partial.SessionErr != nil || partial.CancelErr != nil {
		return partial
	}
	return nil
}

// cancelSiblingEntries отменяет все живые заявки игрока во всех играх и
// залах, кроме только что посаженной. Отмена массовая, от имени system.
func (m *Manager) cancelSiblingEntries(playerID, keepEntryID uint) error {
	siblings, err := m.store.ListEntries(EntryFilter{
		PlayerID:  playerID,
		Statuses:  NonTerminalStatuses(),
		ExcludeID: keepEntryID,
	})
	if err != nil {
		return fmt.Errorf("list sibling entries: %w", err)
	}
	if len(siblings) == 0 {
		return nil
	}

	now := m.now()
	ids := make([]uint, 0, len(siblings))
	for _, s := range siblings {
		ids = append(ids, s.ID)
	}
	updates := map[string]interface{}{
		"status":       models.StatusCancelled,
		"cancelled_at": now,
		"cancelled_by": models.ActorSystem,
	}
	if err := m.store.BulkUpdateEntries(ids, updates); err != nil {
		return fmt.Errorf("bulk cancel sibling entries: %w", err)
	}

	for i := range siblings {
		old := siblings[i].Status
		m.applyUpdates(&siblings[i], updates)
		if err := m.notifier.StatusChanged(&siblings[i], old, models.StatusCancelled); err != nil {
			log.Printf("Уведомление об отмене записи %d не доставлено: %v", siblings[i].ID, err)
		}
	}
	return nil
}
