package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"couponHub/backend/config"
	"couponHub/backend/models"
	"couponHub/backend/validators"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// newTestDB opens a private in-memory sqlite database per test and migrates it.
func newTestDB(t *testing.T) (*gorm.DB, *sqlx.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db, sqlx.NewDb(sqlDB, "sqlite3")
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type catalog struct {
	Category *models.Category
	Platform *models.Platform
}

func seedCatalog(t *testing.T, db *gorm.DB) catalog {
	t.Helper()
	ctx := context.Background()
	cat, err := NewCategoryService(db).Create(ctx, validators.CategoryInput{Name: "Electronics"})
	require.NoError(t, err)
	p, err := NewPlatformService(db).Create(ctx, validators.PlatformInput{Name: "Mega Store", WebsiteURL: "https://megastore.example.com"})
	require.NoError(t, err)
	return catalog{Category: cat, Platform: p}
}

func couponInput(c catalog, title string) validators.CouponInput {
	return validators.CouponInput{
		Title:         title,
		Code:          strings.ToUpper(strings.ReplaceAll(title, " ", "")),
		DiscountType:  models.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		AffiliateURL:  "https://megastore.example.com/?ref=hub",
		CategoryID:    c.Category.ID,
		PlatformID:    c.Platform.ID,
	}
}

func timePtr(t time.Time) *time.Time { return &t }
