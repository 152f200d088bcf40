package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"pokerroom/internal/models"

	"github.com/go-redis/redis/v8"
)

var notifierCtx = context.Background()

// EventNotifier — боевая реализация waitlist.Notifier: рассылает события
// подписчикам зала через WebSocket-хаб и кэширует последнее событие записи
// в Redis с TTL (для экранов персонала). Доставка best-effort.
type EventNotifier struct {
	hub   *Hub
	redis *redis.Client
	ttl   time.Duration
}

func NewEventNotifier(hub *Hub, rdb *redis.Client) *EventNotifier {
	return &EventNotifier{
		hub:   hub,
		redis: rdb,
		ttl:   24 * time.Hour,
	}
}

func (n *EventNotifier) StatusChanged(entry *models.WaitlistEntry, oldStatus, newStatus models.WaitlistStatus) error {
	n.hub.BroadcastWSMessage(WSMessage{
		EventType: "status_changed",
		RoomID:    strconv.Itoa(int(entry.RoomID)),
		Data: map[string]interface{}{
			"entry_id":   entry.ID,
			"player_id":  entry.PlayerID,
			"game_id":    entry.GameID,
			"old_status": oldStatus,
			"new_status": newStatus,
		},
	})
	return n.cacheEvent(entry.ID, map[string]interface{}{
		"event":      "status_changed",
		"old_status": oldStatus,
		"new_status": newStatus,
	})
}

func (n *EventNotifier) ExpiryWarning(entry *models.WaitlistEntry, minutesRemaining int) error {
	n.hub.BroadcastWSMessage(WSMessage{
		EventType: "expiry_warning",
		RoomID:    strconv.Itoa(int(entry.RoomID)),
		Data: map[string]interface{}{
			"entry_id":          entry.ID,
			"player_id":         entry.PlayerID,
			"game_id":           entry.GameID,
			"status":            entry.Status,
			"minutes_remaining": minutesRemaining,
		},
	})
	return n.cacheEvent(entry.ID, map[string]interface{}{
		"event":             "expiry_warning",
		"minutes_remaining": minutesRemaining,
	})
}

func (n *EventNotifier) cacheEvent(entryID uint, payload map[string]interface{}) error {
	if n.redis == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("waitlist:last_event:%d", entryID)
	return n.redis.Set(notifierCtx, key, data, n.ttl).Err()
}
