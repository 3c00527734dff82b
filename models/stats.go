package models

import "time"

// Read models for the admin dashboard. Not persisted.

type CouponClicks struct {
	CouponID   uint   `db:"id" json:"coupon_id"`
	Title      string `db:"title" json:"title"`
	ClickCount int64  `db:"click_count" json:"click_count"`
}

type PlatformClicks struct {
	PlatformID uint   `db:"id" json:"platform_id"`
	Name       string `db:"name" json:"name"`
	Clicks     int64  `db:"clicks" json:"clicks"`
}

type DailyClicks struct {
	Day    string `db:"day" json:"day"` // YYYY-MM-DD
	Clicks int64  `db:"clicks" json:"clicks"`
}

type DashboardStats struct {
	TotalCategories int64            `json:"total_categories"`
	TotalPlatforms  int64            `json:"total_platforms"`
	TotalCoupons    int64            `json:"total_coupons"`
	ActiveCoupons   int64            `json:"active_coupons"`
	ExpiredCoupons  int64            `json:"expired_coupons"`
	TotalClicks     int64            `json:"total_clicks"`
	ClicksToday     int64            `json:"clicks_today"`
	TopCoupons      []CouponClicks   `json:"top_coupons"`
	TopPlatforms    []PlatformClicks `json:"top_platforms"`
	ClicksByDay     []DailyClicks    `json:"clicks_by_day"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
