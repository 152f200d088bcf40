package waitlist_test

import (
	"testing"
	"time"

	"pokerroom/internal/models"
	"pokerroom/internal/waitlist"

	"github.com/stretchr/testify/assert"
)

// seedQueue создаёт очередь игры 1 из n игроков с позициями 1..n.
func seedQueue(store *fakeStore, n int) {
	for i := 1; i <= n; i++ {
		e := models.WaitlistEntry{
			PlayerID: uint(100 + i),
			GameID:   1,
			RoomID:   1,
			Status:   models.StatusWaiting,
			Position: i,
		}
		e.ID = uint(i)
		e.CreatedAt = testTime.Add(time.Duration(i) * time.Minute)
		store.addEntry(e)
	}
}

func queueIDs(t *testing.T, m *waitlist.Manager) []uint {
	t.Helper()
	queue, err := m.Queue(1)
	assert.NoError(t, err)
	ids := make([]uint, 0, len(queue))
	for _, e := range queue {
		ids = append(ids, e.ID)
	}
	return ids
}

// assertNoDuplicatePositions — инвариант перенумерации: в очереди одной игры
// не бывает двух записей с одинаковой позицией.
func assertNoDuplicatePositions(t *testing.T, m *waitlist.Manager) {
	t.Helper()
	queue, err := m.Queue(1)
	assert.NoError(t, err)
	seen := make(map[int]bool)
	for _, e := range queue {
		assert.False(t, seen[e.Position], "позиция %d встречается дважды", e.Position)
		seen[e.Position] = true
	}
}

func TestMoveToTop(t *testing.T) {
	store := newFakeStore()
	seedQueue(store, 4)
	m := newTestManager(store, nil)

	assert.NoError(t, m.MoveToTop(3))
	assert.Equal(t, []uint{3, 1, 2, 4}, queueIDs(t, m))
	assertNoDuplicatePositions(t, m)
}

func TestMoveToBottom(t *testing.T) {
	store := newFakeStore()
	seedQueue(store, 4)
	m := newTestManager(store, nil)

	assert.NoError(t, m.MoveToBottom(2))
	assert.Equal(t, []uint{1, 3, 4, 2}, queueIDs(t, m))
	assertNoDuplicatePositions(t, m)
}

func TestMoveUpAndDown(t *testing.T) {
	store := newFakeStore()
	seedQueue(store, 3)
	m := newTestManager(store, nil)

	assert.NoError(t, m.MoveUp(3))
	assert.Equal(t, []uint{1, 3, 2}, queueIDs(t, m))

	assert.NoError(t, m.MoveDown(1))
	assert.Equal(t, []uint{3, 1, 2}, queueIDs(t, m))
	assertNoDuplicatePositions(t, m)
}

func TestMoveAtEdgesIsNoop(t *testing.T) {
	store := newFakeStore()
	seedQueue(store, 3)
	m := newTestManager(store, nil)

	assert.NoError(t, m.MoveUp(1))
	assert.Equal(t, []uint{1, 2, 3}, queueIDs(t, m))

	assert.NoError(t, m.MoveDown(3))
	assert.Equal(t, []uint{1, 2, 3}, queueIDs(t, m))
}

func TestMoveBeforeAndAfter(t *testing.T) {
	store := newFakeStore()
	seedQueue(store, 4)
	m := newTestManager(store, nil)

	assert.NoError(t, m.MoveBefore(4, 2))
	assert.Equal(t, []uint{1, 4, 2, 3}, queueIDs(t, m))

	assert.NoError(t, m.MoveAfter(1, 3))
	assert.Equal(t, []uint{4, 2, 3, 1}, queueIDs(t, m))
	assertNoDuplicatePositions(t, m)
}

func TestReorderRejectsNonWaitingEntry(t *testing.T) {
	store := newFakeStore()
	seedQueue(store, 2)
	seedEntry(store, 7, models.StatusCalledIn)
	m := newTestManager(store, nil)

	assert.ErrorIs(t, m.MoveToTop(7), waitlist.ErrNotWaiting)
	assert.ErrorIs(t, m.MoveToTop(99), waitlist.ErrNotFound)
}

// Ничьи по позиции разрешаются по created_at (старшая запись раньше).
func TestOrderingTieBreakByCreatedAt(t *testing.T) {
	store := newFakeStore()
	older := models.WaitlistEntry{PlayerID: 1, GameID: 1, RoomID: 1, Status: models.StatusWaiting, Position: 1}
	older.ID = 1
	older.CreatedAt = testTime
	store.addEntry(older)

	newer := models.WaitlistEntry{PlayerID: 2, GameID: 1, RoomID: 1, Status: models.StatusWaiting, Position: 1}
	newer.ID = 2
	newer.CreatedAt = testTime.Add(time.Minute)
	store.addEntry(newer)

	m := newTestManager(store, nil)
	assert.Equal(t, []uint{1, 2}, queueIDs(t, m))
}

func TestQueuePosition(t *testing.T) {
	store := newFakeStore()
	seedQueue(store, 3)
	m := newTestManager(store, nil)

	pos, err := m.QueuePosition(2)
	assert.NoError(t, err)
	assert.Equal(t, 2, pos)

	pos, err = m.QueuePosition(1)
	assert.NoError(t, err)
	assert.Equal(t, 1, pos)
}

func TestEstimatedWaitMinutes(t *testing.T) {
	store := newFakeStore()
	seedQueue(store, 3)
	m := newTestManager(store, nil)

	// Голова очереди ждёт 0, третий — два слота по 15 минут.
	wait, err := m.EstimatedWaitMinutes(1)
	assert.NoError(t, err)
	assert.Equal(t, 0, wait)

	wait, err = m.EstimatedWaitMinutes(3)
	assert.NoError(t, err)
	assert.Equal(t, 30, wait)
}
