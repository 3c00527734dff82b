package config

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// ConnectReporting opens the sqlx handle used for dashboard aggregates.
// Postgres gets its own lib/pq pool; other drivers share gorm's pool.
// The returned close func releases only a pool the handle owns.
func ConnectReporting(s *Settings, db *gorm.DB) (*sqlx.DB, func() error, error) {
	if s.DBDriver == "postgres" {
		rdb, err := sqlx.Connect("postgres", s.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect reporting db: %w", err)
		}
		rdb.SetMaxOpenConns(5)
		rdb.SetMaxIdleConns(2)
		rdb.SetConnMaxLifetime(5 * time.Minute)
		return rdb, rdb.Close, nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("sql db: %w", err)
	}
	// shared with gorm; CloseDB owns it
	return sqlx.NewDb(sqlDB, s.DBDriver), func() error { return nil }, nil
}
