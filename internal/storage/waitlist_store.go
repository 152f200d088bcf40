package storage

import (
	"errors"

	"pokerroom/internal/models"
	"pokerroom/internal/waitlist"

	"gorm.io/gorm"
)

// WaitlistStore — реализация waitlist.Store поверх GORM/Postgres.
type WaitlistStore struct {
	db *gorm.DB
}

func NewWaitlistStore(db *gorm.DB) *WaitlistStore {
	return &WaitlistStore{db: db}
}

func (s *WaitlistStore) GetEntry(id uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, waitlist.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (s *WaitlistStore) CreateEntry(entry *models.WaitlistEntry) error {
	return s.db.Create(entry).Error
}

func (s *WaitlistStore) ListEntries(f waitlist.EntryFilter) ([]models.WaitlistEntry, error) {
	q := s.db.Model(&models.WaitlistEntry{})
	if f.RoomID != 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.GameID != 0 {
		q = q.Where("game_id = ?", f.GameID)
	}
	if f.PlayerID != 0 {
		q = q.Where("player_id = ?", f.PlayerID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.ExcludeID != 0 {
		q = q.Where("id <> ?", f.ExcludeID)
	}

	var entries []models.WaitlistEntry
	if err := q.Order("position ASC, created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateEntry — одно атомарное обновление строки; в нём единственная точка
// истины перехода статуса.
func (s *WaitlistStore) UpdateEntry(id uint, updates map[string]interface{}) error {
	res := s.db.Model(&models.WaitlistEntry{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return waitlist.ErrNotFound
	}
	return nil
}

func (s *WaitlistStore) BulkUpdateEntries(ids []uint, updates map[string]interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Model(&models.WaitlistEntry{}).Where("id IN ?", ids).Updates(updates).Error
}

func (s *WaitlistStore) MaxPosition(gameID uint) (int, error) {
	var maxPosition int
	row := s.db.Model(&models.WaitlistEntry{}).
		Where("game_id = ? AND status = ?", gameID, models.StatusWaiting).
		Select("COALESCE(MAX(position),0)").Row()
	if err := row.Scan(&maxPosition); err != nil {
		return 0, err
	}
	return maxPosition, nil
}

// UpdatePositions перенумеровывает очередь игры в одной транзакции:
// либо применяются все позиции, либо ни одна.
func (s *WaitlistStore) UpdatePositions(gameID uint, positions map[uint]int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for id, pos := range positions {
			if err := tx.Model(&models.WaitlistEntry{}).
				Where("id = ? AND game_id = ?", id, gameID).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *WaitlistStore) ActiveTableSession(tableID uint) (*models.TableSession, error) {
	var session models.TableSession
	if err := s.db.Where("table_id = ? AND closed_at IS NULL", tableID).
		Order("opened_at DESC").First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, waitlist.ErrNoActiveSession
		}
		return nil, err
	}
	return &session, nil
}

func (s *WaitlistStore) CreatePlayerSession(session *models.PlayerSession) error {
	return s.db.Create(session).Error
}
