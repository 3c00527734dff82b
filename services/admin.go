package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"couponHub/backend/models"
)

const (
	dashboardCacheKey = "admin:dashboard"
	dashboardDays     = 14
	dashboardTopN     = 5
)

// AdminService builds the dashboard statistics.
type AdminService struct {
	db       *gorm.DB
	reports  *sqlx.DB
	cache    *redis.Client
	cacheTTL time.Duration
	now      func() time.Time
}

func NewAdminService(db *gorm.DB, reports *sqlx.DB, cache *redis.Client, cacheTTL time.Duration) *AdminService {
	return &AdminService{db: db, reports: reports, cache: cache, cacheTTL: cacheTTL, now: time.Now}
}

func (s *AdminService) SetClock(now func() time.Time) { s.now = now }

// Dashboard returns the cached statistics when fresh, otherwise recomputes them.
func (s *AdminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	if stats, ok := s.cached(ctx); ok {
		return stats, nil
	}
	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, stats)
	return stats, nil
}

// InvalidateDashboard drops the cached copy after catalogue writes.
func (s *AdminService) InvalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		log.WithError(err).Warn("invalidate dashboard cache")
	}
}

func (s *AdminService) compute(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now().UTC()
	today := dayStart(now)
	db := s.db.WithContext(ctx)
	stats := &models.DashboardStats{GeneratedAt: now}

	counts := []struct {
		dst   *int64
		query *gorm.DB
		what  string
	}{
		{&stats.TotalCategories, db.Model(&models.Category{}), "categories"},
		{&stats.TotalPlatforms, db.Model(&models.Platform{}), "platforms"},
		{&stats.TotalCoupons, db.Model(&models.Coupon{}), "coupons"},
		{&stats.ActiveCoupons, liveScope(db.Model(&models.Coupon{}), now), "active coupons"},
		{&stats.ExpiredCoupons, db.Model(&models.Coupon{}).Where("expires_at IS NOT NULL AND expires_at <= ?", now), "expired coupons"},
		{&stats.TotalClicks, db.Model(&models.Click{}), "clicks"},
		{&stats.ClicksToday, db.Model(&models.Click{}).Where("created_at >= ?", today), "clicks today"},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", c.what, err)
		}
	}

	var err error
	if stats.TopCoupons, err = s.topCoupons(ctx, dashboardTopN); err != nil {
		return nil, err
	}
	if stats.TopPlatforms, err = s.topPlatforms(ctx, dashboardTopN); err != nil {
		return nil, err
	}
	if stats.ClicksByDay, err = s.clicksByDay(ctx, today.AddDate(0, 0, -(dashboardDays-1))); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) topCoupons(ctx context.Context, limit int) ([]models.CouponClicks, error) {
	query := s.reports.Rebind(`
		SELECT id, title, click_count
		FROM coupons
		WHERE deleted_at IS NULL AND click_count > 0
		ORDER BY click_count DESC, id ASC
		LIMIT ?`)
	out := []models.CouponClicks{}
	if err := s.reports.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("top coupons: %w", err)
	}
	return out, nil
}

func (s *AdminService) topPlatforms(ctx context.Context, limit int) ([]models.PlatformClicks, error) {
	query := s.reports.Rebind(`
		SELECT p.id, p.name, COUNT(k.id) AS clicks
		FROM platforms p
		JOIN clicks k ON k.platform_id = p.id AND k.deleted_at IS NULL
		WHERE p.deleted_at IS NULL
		GROUP BY p.id, p.name
		ORDER BY clicks DESC, p.id ASC
		LIMIT ?`)
	out := []models.PlatformClicks{}
	if err := s.reports.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("top platforms: %w", err)
	}
	return out, nil
}

func (s *AdminService) clicksByDay(ctx context.Context, since time.Time) ([]models.DailyClicks, error) {
	query := s.reports.Rebind(`
		SELECT CAST(DATE(created_at) AS CHAR(10)) AS day, COUNT(*) AS clicks
		FROM clicks
		WHERE deleted_at IS NULL AND created_at >= ?
		GROUP BY DATE(created_at)
		ORDER BY DATE(created_at) ASC`)
	out := []models.DailyClicks{}
	if err := s.reports.SelectContext(ctx, &out, query, since); err != nil {
		return nil, fmt.Errorf("clicks by day: %w", err)
	}
	return out, nil
}

func (s *AdminService) cached(ctx context.Context) (*models.DashboardStats, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("read dashboard cache")
		}
		return nil, false
	}
	var stats models.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		log.WithError(err).Warn("decode dashboard cache")
		return nil, false
	}
	return &stats, true
}

func (s *AdminService) store(ctx context.Context, stats *models.DashboardStats) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, raw, s.cacheTTL).Err(); err != nil {
		log.WithError(err).Warn("write dashboard cache")
	}
}
