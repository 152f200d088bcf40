package models

import (
	"time"

	"gorm.io/gorm"
)

// WaitlistStatus — закрытый перечень статусов записи в листе ожидания.
type WaitlistStatus string

const (
	StatusCalledIn  WaitlistStatus = "calledin"  // игрок позвонил/записался, но ещё не пришёл
	StatusWaiting   WaitlistStatus = "waiting"   // игрок отметился и стоит в очереди
	StatusNotified  WaitlistStatus = "notified"  // игроку предложено место, ждём ответа
	StatusSeated    WaitlistStatus = "seated"    // игрок посажен за стол (терминальный)
	StatusCancelled WaitlistStatus = "cancelled" // запись отменена (терминальный)
	StatusExpired   WaitlistStatus = "expired"   // запись истекла по таймауту (терминальный)
)

// Actor — кто инициировал отмену/истечение записи.
type Actor string

const (
	ActorPlayer Actor = "player"
	ActorStaff  Actor = "staff"
	ActorSystem Actor = "system"
)

// WaitlistEntry — заявка игрока на одну игру. Создаётся в статусе calledin,
// меняется только через менеджер статусов и заканчивает жизнь в одном из
// терминальных статусов. Записи не удаляются — терминальные остаются как история.
type WaitlistEntry struct {
	gorm.Model
	PlayerID uint `gorm:"index;not null"`
	Player   User `gorm:"foreignKey:PlayerID"`
	GameID   uint `gorm:"index;not null"`
	RoomID   uint `gorm:"index;not null"`

	Status WaitlistStatus `gorm:"type:varchar(16);index;not null;default:'calledin'"`

	// CreatedAt (из gorm.Model) — якорь таймаута для calledin.
	CheckedInAt *time.Time // ставится при входе в waiting
	NotifiedAt  *time.Time // ставится при входе в notified, якорь его таймаута
	CancelledAt *time.Time // ставится при входе в cancelled или expired
	CancelledBy Actor      `gorm:"type:varchar(16)"`

	// Позиция в очереди. Осмысленна только для статуса waiting.
	Position int `gorm:"index"`
	Notes    string
}
