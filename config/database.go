package config

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"couponHub/backend/models"
)

// DB is the shared gorm client every service is built on.
var DB *gorm.DB

func ConnectDB(s *Settings) error {
	var dialector gorm.Dialector
	switch s.DBDriver {
	case "mysql":
		dialector = mysql.Open(s.DSN())
	default:
		dialector = postgres.Open(s.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return fmt.Errorf("open %s: %w", s.DBDriver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("ping %s: %w", s.DBDriver, err)
	}

	DB = db
	return nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Platform{},
		&models.Coupon{},
		&models.Click{},
	)
}

func CloseDB() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
