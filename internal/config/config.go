package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_api/internal/models"
)

type Config struct {
	HTTP_ADDR      string
	LOG_LEVEL      string
	DB_HOST        string
	DB_PORT        string
	DB_USER        string
	DB_PASSWORD    string
	DB_NAME        string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	ES_INDEX       string
	KAFKA_ADDRESS  string
	ADMIN_USERNAME string
	ADMIN_PASSWORD string

	// RESTORE_FAILED_CART_LINES=1 re-adds skipped checkout lines to the cart
	// instead of discarding them.
	RESTORE_FAILED_CART_LINES bool
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		HTTP_ADDR:                 getenv("HTTP_ADDR", ":8080"),
		LOG_LEVEL:                 getenv("LOG_LEVEL", "info"),
		DB_HOST:                   os.Getenv("DB_HOST"),
		DB_PORT:                   os.Getenv("DB_PORT"),
		DB_USER:                   os.Getenv("DB_USER"),
		DB_PASSWORD:               os.Getenv("DB_PASSWORD"),
		DB_NAME:                   os.Getenv("DB_NAME"),
		ES_URL:                    os.Getenv("ES_URL"),
		ES_USER:                   os.Getenv("ES_USER"),
		ES_PASSWORD:               os.Getenv("ES_PASSWORD"),
		ES_INDEX:                  getenv("ES_INDEX", "items"),
		KAFKA_ADDRESS:             os.Getenv("KAFKA_ADDRESS"),
		ADMIN_USERNAME:            getenv("ADMIN_USERNAME", "shopkeeper"),
		ADMIN_PASSWORD:            os.Getenv("ADMIN_PASSWORD"),
		RESTORE_FAILED_CART_LINES: os.Getenv("RESTORE_FAILED_CART_LINES") == "1",
	}

	return config, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
}

func InitDB(ctx context.Context, c *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DSN()), &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("pinging db: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Admin{}, &models.Item{}, &models.Order{}); err != nil {
		return nil, fmt.Errorf("running migration: %w", err)
	}

	return db, nil
}
