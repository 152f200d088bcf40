package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	_ "pokerroom/docs"
	"pokerroom/internal/auth"
	"pokerroom/internal/handlers"
	"pokerroom/internal/models"
	"pokerroom/internal/storage"
	"pokerroom/internal/waitlist"
	"pokerroom/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Лист ожидания покерного клуба
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	db, err := storage.Connect()
	if err != nil {
		log.Fatal("Ошибка подключения к базе данных... ", err.Error())
	}

	if err := db.AutoMigrate(
		&models.User{}, &models.Room{}, &models.Game{}, &models.Table{},
		&models.TableSession{}, &models.PlayerSession{}, &models.WaitlistEntry{},
	); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	rdb := storage.NewRedisClient()

	hub := ws.NewHub()
	go hub.Run()

	policy := waitlist.PolicyFromEnv()
	store := storage.NewWaitlistStore(db)
	notifier := ws.NewEventNotifier(hub, rdb)
	manager := waitlist.NewManager(store, notifier, policy)

	sweeper := waitlist.NewSweeper(store, notifier, policy)
	if err := sweeper.Start(); err != nil {
		log.Fatal("Ошибка запуска обхода листа ожидания... ", err.Error())
	}
	defer sweeper.Stop()

	h := handlers.New(db, manager, sweeper, hub)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/register", h.Register)
		authGroup.POST("/refresh", h.RefreshToken)
	}

	api := r.Group("/api", auth.AuthMiddleware())
	{
		api.GET("/rooms", h.ListRooms)
		api.GET("/rooms/:id/games", h.ListGames)
		api.GET("/games/:id/waitlist", h.GetGameWaitlist)
		api.POST("/games/:id/waitlist", h.JoinWaitlist)
		api.GET("/profile/waitlist", h.GetMyWaitlist)
		api.POST("/waitlist/:id/cancel", h.CancelEntry)
	}

	staffCIDRs := strings.Split(os.Getenv("STAFF_IP_ALLOWLIST"), ",")
	staff := api.Group("", auth.RequireStaff(), auth.IPAllowlist(staffCIDRs))
	{
		staff.POST("/rooms", h.CreateRoom)
		staff.POST("/rooms/:id/games", h.CreateGame)
		staff.POST("/rooms/:id/tables", h.CreateTable)
		staff.POST("/tables/:id/open", h.OpenTableSession)
		staff.POST("/tables/:id/close", h.CloseTableSession)
		staff.POST("/waitlist/:id/checkin", h.CheckInEntry)
		staff.POST("/waitlist/:id/notify", h.NotifyEntry)
		staff.POST("/waitlist/:id/seat", h.SeatEntry)
		staff.POST("/waitlist/:id/move", h.MoveEntry)
		staff.POST("/rooms/:id/sweep", h.SweepRoom)
		staff.GET("/rooms/:id/expiring", h.GetExpiringEntries)
	}

	rooms := r.Group("/api/rooms")
	{
		rooms.GET("/:id/ws", hub.RoomWebSocketHandler)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
