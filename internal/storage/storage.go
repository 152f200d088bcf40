package storage

import (
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect открывает соединение с базой данных по переменным окружения.
// Клиент возвращается явно и передаётся компонентам через конструкторы —
// глобального состояния нет.
func Connect() (*gorm.DB, error) {
	return connect("DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME")
}

// ConnectTesting — подключение к тестовой базе (TEST_DB_*).
func ConnectTesting() (*gorm.DB, error) {
	return connect("TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME")
}

func connect(hostKey, portKey, userKey, passKey, nameKey string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv(hostKey), os.Getenv(portKey), os.Getenv(userKey), os.Getenv(passKey), os.Getenv(nameKey))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// NewRedisClient создаёт клиент Redis (кэш последних событий листа ожидания).
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
}
