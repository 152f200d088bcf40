package handlers

import (
	"time"

	"pokerroom/internal/waitlist"
	"pokerroom/internal/ws"

	"gorm.io/gorm"
)

// timeNow вынесен в переменную ради подмены в тестах.
var timeNow = time.Now

// Handler держит зависимости HTTP-слоя. Все компоненты передаются через
// конструктор, глобального клиента хранилища нет.
type Handler struct {
	DB      *gorm.DB
	Manager *waitlist.Manager
	Sweeper *waitlist.Sweeper
	Hub     *ws.Hub
}

func New(db *gorm.DB, manager *waitlist.Manager, sweeper *waitlist.Sweeper, hub *ws.Hub) *Handler {
	return &Handler{
		DB:      db,
		Manager: manager,
		Sweeper: sweeper,
		Hub:     hub,
	}
}
