package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RolePlayer = "player"
	RoleStaff  = "staff"
)

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Surname      string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:'player'"` // player | staff
}

type Room struct {
	gorm.Model
	Name    string `gorm:"not null"`
	Address string
}

type Game struct {
	gorm.Model
	RoomID   uint   `gorm:"index;not null"` // Зал, в котором идёт игра
	Name     string `gorm:"not null"`       // Например "NL Hold'em 1/3"
	MinBuyIn int
	MaxBuyIn int
	IsActive bool `gorm:"default:true"`
}

type Table struct {
	gorm.Model
	RoomID uint   `gorm:"index;not null"`
	Name   string `gorm:"not null"`
	Seats  int    `gorm:"not null;default:9"` // Количество посадочных мест
}

// TableSession — игровая сессия стола. Стол должен быть "открыт"
// (ClosedAt IS NULL), прежде чем за него можно сажать игроков.
type TableSession struct {
	gorm.Model
	TableID  uint      `gorm:"index;not null"`
	OpenedAt time.Time `gorm:"not null"`
	ClosedAt *time.Time
}

// PlayerSession — запись о занятом месте: игрок, сессия стола, номер места.
// Уникальный индекс (table_session_id, seat_number) закрывает гонку двойной
// посадки на уровне хранилища.
type PlayerSession struct {
	gorm.Model
	PlayerID       uint `gorm:"index;not null"`
	TableSessionID uint `gorm:"not null;uniqueIndex:idx_session_seat,where:ended_at IS NULL"`
	SeatNumber     int  `gorm:"not null;uniqueIndex:idx_session_seat,where:ended_at IS NULL"`
	StartedAt      time.Time
	EndedAt        *time.Time
	Notes          string
}
