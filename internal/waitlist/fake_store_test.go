package waitlist_test

import (
	"sort"
	"time"

	"pokerroom/internal/models"
	"pokerroom/internal/waitlist"
)

// fakeStore — хранилище в памяти для тестов ядра без реальной базы.
type fakeStore struct {
	entries  map[uint]*models.WaitlistEntry
	sessions map[uint]*models.TableSession // ключ — tableID
	seats    []*models.PlayerSession
	nextID   uint

	listErr   error
	updateErr error
	seatErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries:  make(map[uint]*models.WaitlistEntry),
		sessions: make(map[uint]*models.TableSession),
	}
}

func (f *fakeStore) addEntry(e models.WaitlistEntry) *models.WaitlistEntry {
	if e.ID == 0 {
		f.nextID++
		e.ID = f.nextID
	} else if e.ID > f.nextID {
		f.nextID = e.ID
	}
	copied := e
	f.entries[copied.ID] = &copied
	return f.entries[copied.ID]
}

func (f *fakeStore) openSession(tableID, sessionID uint) {
	f.sessions[tableID] = &models.TableSession{TableID: tableID, OpenedAt: time.Now()}
	f.sessions[tableID].ID = sessionID
}

func (f *fakeStore) GetEntry(id uint) (*models.WaitlistEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, waitlist.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeStore) CreateEntry(entry *models.WaitlistEntry) error {
	f.nextID++
	entry.ID = f.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeStore) ListEntries(filter waitlist.EntryFilter) ([]models.WaitlistEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.WaitlistEntry
	for _, e := range f.entries {
		if filter.RoomID != 0 && e.RoomID != filter.RoomID {
			continue
		}
		if filter.GameID != 0 && e.GameID != filter.GameID {
			continue
		}
		if filter.PlayerID != 0 && e.PlayerID != filter.PlayerID {
			continue
		}
		if filter.ExcludeID != 0 && e.ID == filter.ExcludeID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if e.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) UpdateEntry(id uint, updates map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	e, ok := f.entries[id]
	if !ok {
		return waitlist.ErrNotFound
	}
	applyUpdates(e, updates)
	return nil
}

func (f *fakeStore) BulkUpdateEntries(ids []uint, updates map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, id := range ids {
		if e, ok := f.entries[id]; ok {
			applyUpdates(e, updates)
		}
	}
	return nil
}

func (f *fakeStore) MaxPosition(gameID uint) (int, error) {
	max := 0
	for _, e := range f.entries {
		if e.GameID == gameID && e.Status == models.StatusWaiting && e.Position > max {
			max = e.Position
		}
	}
	return max, nil
}

func (f *fakeStore) UpdatePositions(gameID uint, positions map[uint]int) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for id, pos := range positions {
		if e, ok := f.entries[id]; ok && e.GameID == gameID {
			e.Position = pos
		}
	}
	return nil
}

func (f *fakeStore) ActiveTableSession(tableID uint) (*models.TableSession, error) {
	s, ok := f.sessions[tableID]
	if !ok {
		return nil, waitlist.ErrNoActiveSession
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) CreatePlayerSession(session *models.PlayerSession) error {
	if f.seatErr != nil {
		return f.seatErr
	}
	copied := *session
	f.seats = append(f.seats, &copied)
	return nil
}

func applyUpdates(e *models.WaitlistEntry, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "status":
			e.Status = value.(models.WaitlistStatus)
		case "checked_in_at":
			t := value.(time.Time)
			e.CheckedInAt = &t
		case "notified_at":
			t := value.(time.Time)
			e.NotifiedAt = &t
		case "cancelled_at":
			t := value.(time.Time)
			e.CancelledAt = &t
		case "cancelled_by":
			e.CancelledBy = value.(models.Actor)
		case "position":
			e.Position = value.(int)
		}
	}
}

// failingNotifier возвращает ошибку на каждое событие — для проверки, что
// сбой уведомлений не роняет переходы.
type failingNotifier struct{ err error }

func (n failingNotifier) StatusChanged(*models.WaitlistEntry, models.WaitlistStatus, models.WaitlistStatus) error {
	return n.err
}
func (n failingNotifier) ExpiryWarning(*models.WaitlistEntry, int) error { return n.err }

// recordingNotifier запоминает события для проверок.
type recordingNotifier struct {
	changes  []statusChange
	warnings []expiryWarning
}

type statusChange struct {
	entryID  uint
	from, to models.WaitlistStatus
}

type expiryWarning struct {
	entryID uint
	minutes int
}

func (n *recordingNotifier) StatusChanged(e *models.WaitlistEntry, from, to models.WaitlistStatus) error {
	n.changes = append(n.changes, statusChange{entryID: e.ID, from: from, to: to})
	return nil
}

func (n *recordingNotifier) ExpiryWarning(e *models.WaitlistEntry, minutes int) error {
	n.warnings = append(n.warnings, expiryWarning{entryID: e.ID, minutes: minutes})
	return nil
}
