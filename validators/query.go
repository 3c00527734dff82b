package validators

import "time"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type ListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	Active bool   `form:"active"`
}

// Normalize clamps paging to sane bounds.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		q.Limit = DefaultLimit
	}
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// TotalPages rounds up; an empty result still has zero pages.
func (q ListQuery) TotalPages(total int64) int {
	if q.Limit <= 0 {
		return 0
	}
	return int((total + int64(q.Limit) - 1) / int64(q.Limit))
}

const (
	SortNewest   = "newest"
	SortPopular  = "popular"
	SortExpiring = "expiring"
)

type CouponQuery struct {
	ListQuery
	CategoryID uint   `form:"category_id"`
	PlatformID uint   `form:"platform_id"`
	Featured   bool   `form:"featured"`
	Sort       string `form:"sort" binding:"omitempty,oneof=newest popular expiring"`
}

type ClickQuery struct {
	ListQuery
	CouponID   uint `form:"coupon_id"`
	PlatformID uint `form:"platform_id"`
	// Dates are calendar days in UTC, matching how clicks are bucketed.
	From time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To   time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
}
