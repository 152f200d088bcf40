package handlers

import (
	"net/http"

	"pokerroom/internal/models"
	"pokerroom/internal/response"
	"pokerroom/internal/waitlist"

	"github.com/gin-gonic/gin"
)

// MyWaitlistItem represents a single waitlist entry with all required details
type MyWaitlistItem struct {
	EntryID       uint                  `json:"entry_id"`
	GameID        uint                  `json:"game_id"`
	GameName      string                `json:"game_name"`
	RoomID        uint                  `json:"room_id"`
	Status        models.WaitlistStatus `json:"status"`
	Position      int                   `json:"position,omitempty"`
	EstimatedWait int                   `json:"estimated_wait_minutes,omitempty"`
	CreatedAt     string                `json:"created_at"`
}

// GetMyWaitlistHandler godoc
// @Summary		Мои записи в листах ожидания
// @Description	Все живые записи текущего игрока по всем играм и залам
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		MyWaitlistItem
// @Failure		500	{object}	response.ErrorResponse	"Server error (DB_ERROR)"
// @Router			/api/profile/waitlist [get]
func (h *Handler) GetMyWaitlist(c *gin.Context) {
	playerID := c.GetUint("userID")

	entries, err := h.Manager.List(waitlist.EntryFilter{
		PlayerID: playerID,
		Statuses: waitlist.NonTerminalStatuses(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Error fetching waitlist entries",
			Details: err.Error(),
		})
		return
	}

	if len(entries) == 0 {
		c.JSON(http.StatusOK, []MyWaitlistItem{})
		return
	}

	// Extract game IDs
	var gameIDs []uint
	for _, entry := range entries {
		gameIDs = append(gameIDs, entry.GameID)
	}

	// Get game details
	var games []models.Game
	if err := h.DB.
		Where("id IN ?", gameIDs).
		Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Error fetching game details",
			Details: err.Error(),
		})
		return
	}

	gameMap := make(map[uint]models.Game)
	for _, g := range games {
		gameMap[g.ID] = g
	}

	items := make([]MyWaitlistItem, 0, len(entries))
	for _, entry := range entries {
		item := MyWaitlistItem{
			EntryID:   entry.ID,
			GameID:    entry.GameID,
			GameName:  gameMap[entry.GameID].Name,
			RoomID:    entry.RoomID,
			Status:    entry.Status,
			CreatedAt: entry.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if entry.Status == models.StatusWaiting {
			item.Position = entry.Position
			if wait, err := h.Manager.EstimatedWaitMinutes(entry.ID); err == nil {
				item.EstimatedWait = wait
			}
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, items)
}
