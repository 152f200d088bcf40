package handlers

import (
	"net/http"
	"strconv"
	"time"

	"pokerroom/internal/models"
	"pokerroom/internal/response"

	"github.com/gin-gonic/gin"
)

type CreateRoomRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// @Summary		Создание зала
// @Tags			rooms
// @Accept			json
// @Produce		json
// @Param			room	body		CreateRoomRequest	true	"Данные зала"
// @Security		BearerAuth
// @Success		201	{object}	models.Room
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/rooms [post]
func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	room := models.Room{Name: req.Name, Address: req.Address}
	if err := h.DB.Create(&room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании зала",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, room)
}

// @Summary		Список залов
// @Tags			rooms
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		models.Room
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/rooms [get]
func (h *Handler) ListRooms(c *gin.Context) {
	var rooms []models.Room
	if err := h.DB.Find(&rooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки залов",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

type CreateGameRequest struct {
	Name     string `json:"name" binding:"required"`
	MinBuyIn int    `json:"min_buy_in"`
	MaxBuyIn int    `json:"max_buy_in"`
}

// @Summary		Создание игры в зале
// @Tags			rooms
// @Accept			json
// @Produce		json
// @Param			id		path		string				true	"ID зала"
// @Param			game	body		CreateGameRequest	true	"Данные игры"
// @Security		BearerAuth
// @Success		201	{object}	models.Game
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_ROOM_ID, VALIDATION_ERROR)"
// @Failure		404	{object}	response.ErrorResponse	"Зал не найден (ROOM_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/rooms/{id}/games [post]
func (h *Handler) CreateGame(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ROOM_ID",
			Message: "Неверный идентификатор зала",
		})
		return
	}

	var room models.Room
	if err := h.DB.First(&room, roomID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "ROOM_NOT_FOUND",
			Message: "Зал не найден",
		})
		return
	}

	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	game := models.Game{
		RoomID:   room.ID,
		Name:     req.Name,
		MinBuyIn: req.MinBuyIn,
		MaxBuyIn: req.MaxBuyIn,
		IsActive: true,
	}
	if err := h.DB.Create(&game).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании игры",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, game)
}

// @Summary		Список игр зала
// @Tags			rooms
// @Produce		json
// @Param			id	path		string	true	"ID зала"
// @Security		BearerAuth
// @Success		200	{array}		models.Game
// @Failure		400	{object}	response.ErrorResponse	"Неверный идентификатор зала (INVALID_ROOM_ID)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/rooms/{id}/games [get]
func (h *Handler) ListGames(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ROOM_ID",
			Message: "Неверный идентификатор зала",
		})
		return
	}

	var games []models.Game
	if err := h.DB.Where("room_id = ?", roomID).Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки игр",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, games)
}

type CreateTableRequest struct {
	Name  string `json:"name" binding:"required"`
	Seats int    `json:"seats"`
}

// @Summary		Создание стола в зале
// @Tags			tables
// @Accept			json
// @Produce		json
// @Param			id		path		string				true	"ID зала"
// @Param			table	body		CreateTableRequest	true	"Данные стола"
// @Security		BearerAuth
// @Success		201	{object}	models.Table
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_ROOM_ID, VALIDATION_ERROR)"
// @Failure		404	{object}	response.ErrorResponse	"Зал не найден (ROOM_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/rooms/{id}/tables [post]
func (h *Handler) CreateTable(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ROOM_ID",
			Message: "Неверный идентификатор зала",
		})
		return
	}

	var room models.Room
	if err := h.DB.First(&room, roomID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "ROOM_NOT_FOUND",
			Message: "Зал не найден",
		})
		return
	}

	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}
	if req.Seats <= 0 {
		req.Seats = 9
	}

	table := models.Table{RoomID: room.ID, Name: req.Name, Seats: req.Seats}
	if err := h.DB.Create(&table).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании стола",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, table)
}

// @Summary		Открытие сессии стола
// @Description	Создаёт активную сессию стола; без неё посадка игроков невозможна
// @Tags			tables
// @Produce		json
// @Param			id	path		string	true	"ID стола"
// @Security		BearerAuth
// @Success		201	{object}	models.TableSession
// @Failure		400	{object}	response.ErrorResponse	"Сессия уже открыта (SESSION_ALREADY_OPEN) или неверный ID (INVALID_TABLE_ID)"
// @Failure		404	{object}	response.ErrorResponse	"Стол не найден (TABLE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/tables/{id}/open [post]
func (h *Handler) OpenTableSession(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_TABLE_ID",
			Message: "Неверный идентификатор стола",
		})
		return
	}

	var table models.Table
	if err := h.DB.First(&table, tableID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "TABLE_NOT_FOUND",
			Message: "Стол не найден",
		})
		return
	}

	var existing models.TableSession
	if err := h.DB.Where("table_id = ? AND closed_at IS NULL", table.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "SESSION_ALREADY_OPEN",
			Message: "У стола уже есть открытая сессия",
		})
		return
	}

	session := models.TableSession{TableID: table.ID, OpenedAt: time.Now()}
	if err := h.DB.Create(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при открытии сессии стола",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// @Summary		Закрытие сессии стола
// @Tags			tables
// @Produce		json
// @Param			id	path		string	true	"ID стола"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Нет открытой сессии (NO_ACTIVE_SESSION) или неверный ID (INVALID_TABLE_ID)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/tables/{id}/close [post]
func (h *Handler) CloseTableSession(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_TABLE_ID",
			Message: "Неверный идентификатор стола",
		})
		return
	}

	var session models.TableSession
	if err := h.DB.Where("table_id = ? AND closed_at IS NULL", tableID).First(&session).Error; err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "NO_ACTIVE_SESSION",
			Message: "У стола нет открытой сессии",
		})
		return
	}

	now := time.Now()
	session.ClosedAt = &now
	if err := h.DB.Save(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при закрытии сессии стола",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Сессия стола закрыта"})
}
