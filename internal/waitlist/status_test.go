package waitlist_test

import (
	"testing"

	"pokerroom/internal/models"
	"pokerroom/internal/waitlist"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTable(t *testing.T) {
	allowed := map[models.WaitlistStatus][]models.WaitlistStatus{
		models.StatusCalledIn: {models.StatusWaiting, models.StatusCancelled, models.StatusExpired},
		models.StatusWaiting:  {models.StatusNotified, models.StatusCancelled, models.StatusExpired},
		models.StatusNotified: {models.StatusSeated, models.StatusCancelled, models.StatusExpired},
	}

	// Полный перебор всех пар: разрешено ровно то, что в таблице.
	for _, from := range waitlist.Statuses() {
		for _, to := range waitlist.Statuses() {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			got := waitlist.IsValidTransition(from, to)
			assert.Equal(t, want, got, "переход %s -> %s", from, to)
		}
	}
}

func TestNoTransitionIntoCalledIn(t *testing.T) {
	for _, from := range waitlist.Statuses() {
		assert.False(t, waitlist.IsValidTransition(from, models.StatusCalledIn),
			"в calledin нельзя попасть из %s", from)
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, terminal := range []models.WaitlistStatus{models.StatusSeated, models.StatusCancelled, models.StatusExpired} {
		assert.True(t, waitlist.IsTerminal(terminal))
		for _, to := range waitlist.Statuses() {
			assert.False(t, waitlist.IsValidTransition(terminal, to),
				"терминальный %s не должен переходить в %s", terminal, to)
		}
	}

	for _, live := range waitlist.NonTerminalStatuses() {
		assert.False(t, waitlist.IsTerminal(live))
	}
}

func TestSelfTransitionRejected(t *testing.T) {
	for _, s := range waitlist.Statuses() {
		assert.False(t, waitlist.IsValidTransition(s, s), "повторный переход %s -> %s", s, s)
	}
}

func TestParseStatus(t *testing.T) {
	s, ok := waitlist.ParseStatus("notified")
	assert.True(t, ok)
	assert.Equal(t, models.StatusNotified, s)

	_, ok = waitlist.ParseStatus("unknown")
	assert.False(t, ok)

	_, ok = waitlist.ParseStatus("")
	assert.False(t, ok)
}
