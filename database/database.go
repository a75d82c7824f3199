package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"enkai-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() error {
	var err error

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	// コンテナ起動直後はDBが立ち上がっていないことがあるのでリトライする
	for i := 0; i < 4; i++ {
		DB, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		})
		if err == nil {
			break
		}
		time.Sleep(20 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")
	return nil
}

func Migrate() error {
	log.Println("Running database migrations...")

	if err := MigrateWith(DB); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// MigrateWith は指定された接続に対してマイグレーションを実行する。
// テストではインメモリSQLiteに対して使う
func MigrateWith(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomMember{},
		&models.Activity{},
		&models.Event{},
		&models.ProposedActivity{},
		&models.EventParticipant{},
		&models.ActivityVote{},
		&models.DateOption{},
		&models.DateResponse{},
		&models.FeedItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
