package waitlist

import "pokerroom/internal/models"

// EntryFilter — условия выборки записей. Нулевые поля не участвуют в фильтре.
type EntryFilter struct {
	RoomID    uint
	GameID    uint
	PlayerID  uint
	Statuses  []models.WaitlistStatus
	ExcludeID uint
}

// Store — контракт хранилища для ядра листа ожидания. Реализация обязана
// выполнять UpdateEntry как одно атомарное обновление строки; многострочных
// транзакций ядро не требует (кроме UpdatePositions, см. ниже).
type Store interface {
	GetEntry(id uint) (*models.WaitlistEntry, error) // ErrNotFound, если записи нет
	CreateEntry(entry *models.WaitlistEntry) error
	ListEntries(f EntryFilter) ([]models.WaitlistEntry, error) // порядок: position ASC, created_at ASC
	UpdateEntry(id uint, updates map[string]interface{}) error
	BulkUpdateEntries(ids []uint, updates map[string]interface{}) error

	// MaxPosition — максимальная позиция среди waiting-записей игры (0, если пусто).
	MaxPosition(gameID uint) (int, error)
	// UpdatePositions перенумеровывает записи игры атомарно: либо все
	// позиции из карты применены, либо ни одна.
	UpdatePositions(gameID uint, positions map[uint]int) error

	// ActiveTableSession — открытая сессия стола; ErrNoActiveSession, если её нет.
	ActiveTableSession(tableID uint) (*models.TableSession, error)
	CreatePlayerSession(session *models.PlayerSession) error
}
