package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pokerroom/internal/models"
	"pokerroom/internal/response"
	"pokerroom/internal/waitlist"

	"github.com/gin-gonic/gin"
)

// waitlistError переводит ошибки ядра в HTTP-ответы.
func waitlistError(c *gin.Context, err error) {
	var ite *waitlist.InvalidTransitionError
	switch {
	case errors.Is(err, waitlist.ErrNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "ENTRY_NOT_FOUND",
			Message: "Запись листа ожидания не найдена",
		})
	case errors.As(err, &ite):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_TRANSITION",
			Message: "Недопустимый переход статуса",
			Details: ite.Error(),
		})
	case errors.Is(err, waitlist.ErrNotWaiting):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "NOT_IN_QUEUE",
			Message: "Запись не находится в очереди",
		})
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при выполнении операции",
			Details: err.Error(),
		})
	}
}

type JoinWaitlistRequest struct {
	Notes string `json:"notes"`
	// PlayerID позволяет персоналу записать игрока от его имени.
	PlayerID uint `json:"player_id"`
}

// JoinWaitlistHandler записывает игрока в лист ожидания игры
// @Summary		Запись в лист ожидания
// @Description	Создаёт запись в статусе calledin для указанной игры
// @Tags			waitlist
// @Accept			json
// @Produce		json
// @Param			id		path		string				true	"ID игры"
// @Param			body	body		JoinWaitlistRequest	false	"Дополнительные данные"
// @Security		BearerAuth
// @Success		201	{object}	models.WaitlistEntry
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_GAME_ID, ALREADY_IN_WAITLIST, GAME_INACTIVE)"
// @Failure		404	{object}	response.ErrorResponse	"Игра не найдена (GAME_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/games/{id}/waitlist [post]
func (h *Handler) JoinWaitlist(c *gin.Context) {
	gameID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_GAME_ID",
			Message: "Неверный идентификатор игры",
		})
		return
	}

	var req JoinWaitlistRequest
	_ = c.ShouldBindJSON(&req)

	playerID := c.GetUint("userID")
	if req.PlayerID != 0 && c.GetString("role") == models.RoleStaff {
		playerID = req.PlayerID
	}

	var game models.Game
	if err := h.DB.First(&game, gameID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "GAME_NOT_FOUND",
			Message: "Игра не найдена",
		})
		return
	}
	if !game.IsActive {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "GAME_INACTIVE",
			Message: "Игра не активна",
		})
		return
	}

	// Игрок может держать по одной живой заявке на игру.
	existing, err := h.Manager.List(waitlist.EntryFilter{
		GameID:   game.ID,
		PlayerID: playerID,
		Statuses: waitlist.NonTerminalStatuses(),
	})
	if err != nil {
		waitlistError(c, err)
		return
	}
	if len(existing) > 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "ALREADY_IN_WAITLIST",
			Message: "Игрок уже записан на эту игру",
		})
		return
	}

	entry := models.WaitlistEntry{
		PlayerID: playerID,
		GameID:   game.ID,
		RoomID:   game.RoomID,
		Notes:    req.Notes,
	}
	if err := h.Manager.Create(&entry); err != nil {
		waitlistError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type WaitlistItem struct {
	EntryID       uint                  `json:"entry_id"`
	PlayerID      uint                  `json:"player_id"`
	Status        models.WaitlistStatus `json:"status"`
	Position      int                   `json:"position,omitempty"`
	EstimatedWait int                   `json:"estimated_wait_minutes,omitempty"`
	Notes         string                `json:"notes,omitempty"`
}

type GameWaitlistResponse struct {
	GameID  uint           `json:"game_id"`
	RoomID  uint           `json:"room_id"`
	Waiting []WaitlistItem `json:"waiting"`
	Pending []WaitlistItem `json:"pending"` // calledin и notified
}

// GetGameWaitlistHandler возвращает очередь игры
// @Summary		Очередь игры
// @Description	Возвращает waiting-очередь с позициями и оценкой ожидания, плюс записи calledin/notified
// @Tags			waitlist
// @Produce		json
// @Param			id	path		string	true	"ID игры"
// @Security		BearerAuth
// @Success		200	{object}	GameWaitlistResponse
// @Failure		400	{object}	response.ErrorResponse	"Неверный идентификатор игры (INVALID_GAME_ID)"
// @Failure		404	{object}	response.ErrorResponse	"Игра не найдена (GAME_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/games/{id}/waitlist [get]
func (h *Handler) GetGameWaitlist(c *gin.Context) {
	gameID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_GAME_ID",
			Message: "Неверный идентификатор игры",
		})
		return
	}

	var game models.Game
	if err := h.DB.First(&game, gameID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "GAME_NOT_FOUND",
			Message: "Игра не найдена",
		})
		return
	}

	queue, err := h.Manager.Queue(game.ID)
	if err != nil {
		waitlistError(c, err)
		return
	}
	pending, err := h.Manager.List(waitlist.EntryFilter{
		GameID:   game.ID,
		Statuses: []models.WaitlistStatus{models.StatusCalledIn, models.StatusNotified},
	})
	if err != nil {
		waitlistError(c, err)
		return
	}

	perSlot := h.Manager.Policy().MinutesPerSlot
	resp := GameWaitlistResponse{
		GameID:  game.ID,
		RoomID:  game.RoomID,
		Waiting: make([]WaitlistItem, 0, len(queue)),
		Pending: make([]WaitlistItem, 0, len(pending)),
	}
	for i, e := range queue {
		resp.Waiting = append(resp.Waiting, WaitlistItem{
			EntryID:       e.ID,
			PlayerID:      e.PlayerID,
			Status:        e.Status,
			Position:      e.Position,
			EstimatedWait: i * perSlot,
			Notes:         e.Notes,
		})
	}
	for _, e := range pending {
		resp.Pending = append(resp.Pending, WaitlistItem{
			EntryID:  e.ID,
			PlayerID: e.PlayerID,
			Status:   e.Status,
			Notes:    e.Notes,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// parseEntryID достаёт идентификатор записи из пути.
func parseEntryID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ENTRY_ID",
			Message: "Неверный идентификатор записи",
		})
		return 0, false
	}
	return uint(id), true
}

// CheckInEntryHandler отмечает приход игрока
// @Summary		Check-in записи
// @Description	Перевод calledin -> waiting; запись получает позицию в хвосте очереди
// @Tags			waitlist
// @Produce		json
// @Param			id	path		string	true	"ID записи"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Недопустимый переход (INVALID_TRANSITION)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (ENTRY_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/waitlist/{id}/checkin [post]
func (h *Handler) CheckInEntry(c *gin.Context) {
	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}
	if err := h.Manager.CheckIn(entryID, models.ActorStaff); err != nil {
		waitlistError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Игрок отмечен, запись переведена в очередь"})
}

// NotifyEntryHandler предлагает игроку место
// @Summary		Уведомление записи
// @Description	Перевод waiting -> notified; у игрока есть окно на ответ
// @Tags			waitlist
// @Produce		json
// @Param			id	path		string	true	"ID записи"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Недопустимый переход (INVALID_TRANSITION)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (ENTRY_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/waitlist/{id}/notify [post]
func (h *Handler) NotifyEntry(c *gin.Context) {
	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}
	if err := h.Manager.Notify(entryID, models.ActorStaff); err != nil {
		waitlistError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Игроку отправлено предложение места"})
}

// CancelEntryHandler отменяет запись
// @Summary		Отмена записи
// @Description	Игрок может отменить только свою запись, персонал — любую
// @Tags			waitlist
// @Produce		json
// @Param			id	path		string	true	"ID записи"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Недопустимый переход (INVALID_TRANSITION)"
// @Failure		403	{object}	response.ErrorResponse	"Чужая запись (ACCESS_DENIED)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (ENTRY_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/waitlist/{id}/cancel [post]
func (h *Handler) CancelEntry(c *gin.Context) {
	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}

	actor := models.ActorStaff
	if c.GetString("role") != models.RoleStaff {
		entry, err := h.Manager.Get(entryID)
		if err != nil {
			waitlistError(c, err)
			return
		}
		if entry.PlayerID != c.GetUint("userID") {
			c.JSON(http.StatusForbidden, response.ErrorResponse{
				Code:    "ACCESS_DENIED",
				Message: "Нельзя отменить чужую запись",
			})
			return
		}
		actor = models.ActorPlayer
	}

	if err := h.Manager.Cancel(entryID, actor); err != nil {
		waitlistError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Запись отменена"})
}

type SeatRequest struct {
	TableID    uint   `json:"table_id" binding:"required"`
	SeatNumber int    `json:"seat_number" binding:"required"`
	Notes      string `json:"notes"`
	// CancelOtherEntries — отменять ли остальные заявки игрока (по умолчанию true).
	CancelOtherEntries *bool `json:"cancel_other_entries"`
}

// SeatEntryHandler сажает игрока за стол
// @Summary		Посадка игрока
// @Description	Переводит запись в seated, создаёт запись о месте и отменяет остальные заявки игрока
// @Tags			waitlist
// @Accept			json
// @Produce		json
// @Param			id		path		string		true	"ID записи"
// @Param			body	body		SeatRequest	true	"Стол и место"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Success		200	{object}	response.SeatWarningResponse	"Посадка прошла частично — нужна ручная проверка"
// @Failure		400	{object}	response.ErrorResponse	"Недопустимый переход (INVALID_TRANSITION), нет открытой сессии (NO_ACTIVE_SESSION), место занято (SEAT_OCCUPIED) или неверное (INVALID_SEAT)"
// @Failure		404	{object}	response.ErrorResponse	"Запись или стол не найдены (ENTRY_NOT_FOUND, TABLE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/waitlist/{id}/seat [post]
func (h *Handler) SeatEntry(c *gin.Context) {
	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}

	var req SeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var table models.Table
	if err := h.DB.First(&table, req.TableID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "TABLE_NOT_FOUND",
			Message: "Стол не найден",
		})
		return
	}
	if req.SeatNumber < 1 || req.SeatNumber > table.Seats {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_SEAT",
			Message: "Номер места вне диапазона стола",
		})
		return
	}

	// Свободность места проверяется здесь, до вызова ядра. Повторной
	// атомарной проверки внутри посадки нет — гонку закрывает уникальный
	// индекс хранилища.
	var occupied int64
	h.DB.Model(&models.PlayerSession{}).
		Joins("JOIN table_sessions ON table_sessions.id = player_sessions.table_session_id").
		Where("table_sessions.table_id = ? AND table_sessions.closed_at IS NULL", req.TableID).
		Where("player_sessions.seat_number = ? AND player_sessions.ended_at IS NULL", req.SeatNumber).
		Count(&occupied)
	if occupied > 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "SEAT_OCCUPIED",
			Message: "Место уже занято",
		})
		return
	}

	cancelOthers := true
	if req.CancelOtherEntries != nil {
		cancelOthers = *req.CancelOtherEntries
	}

	err := h.Manager.SeatPlayer(entryID, req.TableID, req.SeatNumber, req.Notes, cancelOthers)
	if err == nil {
		c.JSON(http.StatusOK, response.SuccessResponse{Message: "Игрок посажен за стол"})
		return
	}

	var partial *waitlist.PartialError
	if errors.As(err, &partial) {
		if errors.Is(partial.SessionErr, waitlist.ErrNoActiveSession) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "NO_ACTIVE_SESSION",
				Message: "У стола нет открытой сессии",
				Details: "запись уже переведена в seated, требуется ручная проверка",
			})
			return
		}
		c.JSON(http.StatusOK, response.SeatWarningResponse{
			Message: "Игрок переведён в seated",
			Warning: partial.Error(),
		})
		return
	}

	waitlistError(c, err)
}

type MoveRequest struct {
	// Direction: top | bottom | up | down | before | after
	Direction string `json:"direction" binding:"required"`
	// TargetID — опорная запись для before/after.
	TargetID uint `json:"target_id"`
}

// MoveEntryHandler меняет позицию записи в очереди
// @Summary		Перестановка в очереди
// @Description	Перемещает waiting-запись; позиции очереди перенумеровываются атомарно
// @Tags			waitlist
// @Accept			json
// @Produce		json
// @Param			id		path		string		true	"ID записи"
// @Param			body	body		MoveRequest	true	"Направление перемещения"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Запись не в очереди (NOT_IN_QUEUE) или неверное направление (INVALID_DIRECTION)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (ENTRY_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/waitlist/{id}/move [post]
func (h *Handler) MoveEntry(c *gin.Context) {
	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var err error
	switch req.Direction {
	case "top":
		err = h.Manager.MoveToTop(entryID)
	case "bottom":
		err = h.Manager.MoveToBottom(entryID)
	case "up":
		err = h.Manager.MoveUp(entryID)
	case "down":
		err = h.Manager.MoveDown(entryID)
	case "before":
		err = h.Manager.MoveBefore(entryID, req.TargetID)
	case "after":
		err = h.Manager.MoveAfter(entryID, req.TargetID)
	default:
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DIRECTION",
			Message: "Неизвестное направление перемещения",
		})
		return
	}
	if err != nil {
		waitlistError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Очередь переупорядочена"})
}

// SweepRoomHandler — разовый запуск обхода просроченных записей
// @Summary		Триггер обхода зала
// @Description	Находит просроченные записи зала и переводит их в expired
// @Tags			waitlist
// @Produce		json
// @Param			id	path		string	true	"ID зала"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Неверный идентификатор зала (INVALID_ROOM_ID)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (SWEEP_FAILED)"
// @Router			/api/rooms/{id}/sweep [post]
func (h *Handler) SweepRoom(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ROOM_ID",
			Message: "Неверный идентификатор зала",
		})
		return
	}
	if err := h.Sweeper.CheckAndExpireEntries(uint(roomID)); err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "SWEEP_FAILED",
			Message: "Обход не выполнен, будет повторён по расписанию",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Обход выполнен"})
}

type ExpiringEntry struct {
	EntryID          uint                  `json:"entry_id"`
	PlayerID         uint                  `json:"player_id"`
	GameID           uint                  `json:"game_id"`
	Status           models.WaitlistStatus `json:"status"`
	MinutesRemaining int                   `json:"minutes_remaining"`
}

// GetExpiringEntriesHandler — записи, у которых скоро истекает срок
// @Summary		Истекающие записи зала
// @Description	Read-only выборка записей в пределах окна предупреждения; состояние не меняет
// @Tags			waitlist
// @Produce		json
// @Param			id	path		string	true	"ID зала"
// @Security		BearerAuth
// @Success		200	{array}		ExpiringEntry
// @Failure		400	{object}	response.ErrorResponse	"Неверный идентификатор зала (INVALID_ROOM_ID)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/rooms/{id}/expiring [get]
func (h *Handler) GetExpiringEntries(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ROOM_ID",
			Message: "Неверный идентификатор зала",
		})
		return
	}

	entries, err := h.Manager.List(waitlist.EntryFilter{
		RoomID:   uint(roomID),
		Statuses: []models.WaitlistStatus{models.StatusCalledIn, models.StatusNotified},
	})
	if err != nil {
		waitlistError(c, err)
		return
	}

	policy := h.Manager.Policy()
	now := timeNow()
	result := make([]ExpiringEntry, 0)
	for i := range entries {
		deadline, ok := policy.Deadline(&entries[i])
		if !ok {
			continue
		}
		remaining := deadline.Sub(now)
		if remaining <= 0 || remaining > policy.WarningLookahead {
			continue
		}
		mins, _ := policy.MinutesRemaining(&entries[i], now)
		result = append(result, ExpiringEntry{
			EntryID:          entries[i].ID,
			PlayerID:         entries[i].PlayerID,
			GameID:           entries[i].GameID,
			Status:           entries[i].Status,
			MinutesRemaining: mins,
		})
	}
	c.JSON(http.StatusOK, result)
}
