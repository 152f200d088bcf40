package waitlist

import (
	"fmt"

	"pokerroom/internal/models"
)

// Очередь игры — waiting-записи, упорядоченные по position ASC с
// детерминированным запасным ключом created_at ASC (обеспечивает хранилище).
// Любая перестановка перенумеровывает позиции 1..n одной транзакцией,
// поэтому дубликатов позиций не возникает.

// Queue возвращает текущую очередь игры.
func (m *Manager) Queue(gameID uint) ([]models.WaitlistEntry, error) {
	return m.store.ListEntries(EntryFilter{
		GameID:   gameID,
		Statuses: []models.WaitlistStatus{models.StatusWaiting},
	})
}

// QueuePosition — место записи в очереди, начиная с 1.
func (m *Manager) QueuePosition(entryID uint) (int, error) {
	_, _, idx, err := m.locate(entryID)
	if err != nil {
		return 0, err
	}
	return idx + 1, nil
}

// EstimatedWaitMinutes — линейная оценка ожидания: количество записей
// впереди, умноженное на минуты на одно место. Это оценка, не гарантия.
func (m *Manager) EstimatedWaitMinutes(entryID uint) (int, error) {
	_, _, idx, err := m.locate(entryID)
	if err != nil {
		return 0, err
	}
	return idx * m.policy.MinutesPerSlot, nil
}

// MoveToTop ставит запись в голову очереди.
func (m *Manager) MoveToTop(entryID uint) error {
	return m.reorder(entryID, func(idx int, q []models.WaitlistEntry) []models.WaitlistEntry {
		moved := q[idx]
		q = append(q[:idx], q[idx+1:]...)
		return append([]models.WaitlistEntry{moved}, q...)
	})
}

// MoveToBottom ставит запись в хвост очереди.
func (m *Manager) MoveToBottom(entryID uint) error {
	return m.reorder(entryID, func(idx int, q []models.WaitlistEntry) []models.WaitlistEntry {
		moved := q[idx]
		q = append(q[:idx], q[idx+1:]...)
		return append(q, moved)
	})
}

// MoveUp поднимает запись на одну позицию (на краю — ничего не делает).
func (m *Manager) MoveUp(entryID uint) error {
	return m.reorder(entryID, func(idx int, q []models.WaitlistEntry) []models.WaitlistEntry {
		if idx > 0 {
			q[idx-1], q[idx] = q[idx], q[idx-1]
		}
		return q
	})
}

// MoveDown опускает запись на одну позицию (на краю — ничего не делает).
func (m *Manager) MoveDown(entryID uint) error {
	return m.reorder(entryID, func(idx int, q []models.WaitlistEntry) []models.WaitlistEntry {
		if idx < len(q)-1 {
			q[idx], q[idx+1] = q[idx+1], q[idx]
		}
		return q
	})
}

// MoveBefore вставляет запись непосредственно перед другой записью той же игры.
func (m *Manager) MoveBefore(entryID, otherID uint) error {
	return m.moveRelative(entryID, otherID, 0)
}

// MoveAfter вставляет запись сразу после другой записи той же игры.
func (m *Manager) MoveAfter(entryID, otherID uint) error {
	return m.moveRelative(entryID, otherID, 1)
}

func (m *Manager) moveRelative(entryID, otherID uint, offset int) error {
	if entryID == otherID {
		return nil
	}
	return m.reorder(entryID, func(idx int, q []models.WaitlistEntry) []models.WaitlistEntry {
		moved := q[idx]
		q = append(q[:idx], q[idx+1:]...)
		target := -1
		for i, e := range q {
			if e.ID == otherID {
				target = i
				break
			}
		}
		if target < 0 {
			// Опорной записи нет в очереди — порядок не меняем.
			return append(q[:idx], append([]models.WaitlistEntry{moved}, q[idx:]...)...)
		}
		pos := target + offset
		return append(q[:pos], append([]models.WaitlistEntry{moved}, q[pos:]...)...)
	})
}

// locate загружает запись и её очередь, возвращая индекс записи в ней.
func (m *Manager) locate(entryID uint) (*models.WaitlistEntry, []models.WaitlistEntry, int, error) {
	entry, err := m.store.GetEntry(entryID)
	if err != nil {
		return nil, nil, 0, err
	}
	if entry.Status != models.StatusWaiting {
		return nil, nil, 0, ErrNotWaiting
	}
	queue, err := m.Queue(entry.GameID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("load game queue: %w", err)
	}
	for i, e := range queue {
		if e.ID == entryID {
			return entry, queue, i, nil
		}
	}
	return nil, nil, 0, ErrNotFound
}

// reorder применяет перестановку и атомарно перенумеровывает очередь 1..n.
func (m *Manager) reorder(entryID uint, permute func(idx int, queue []models.WaitlistEntry) []models.WaitlistEntry) error {
	entry, queue, idx, err := m.locate(entryID)
	if err != nil {
		return err
	}
	newQueue := permute(idx, queue)
	positions := make(map[uint]int, len(newQueue))
	for i, e := range newQueue {
		positions[e.ID] = i + 1
	}
	if err := m.store.UpdatePositions(entry.GameID, positions); err != nil {
		return fmt.Errorf("renumber queue: %w", err)
	}
	return nil
}
